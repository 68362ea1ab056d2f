package metrics

import (
	"math"

	"github.com/san-kum/qmsim/internal/sim"
)

// SixtyFootDistance is the launch split used at drag strips (18.288 m).
const SixtyFootDistance = 18.288

// Split records the time at which the car first covers a distance.
// Value is NaN until the distance is reached.
type Split struct {
	name     string
	distance float64
	time     float64
	prev     sim.Sample
	seen     bool
}

func NewSplit(name string, distance float64) *Split {
	return &Split{name: name, distance: distance, time: math.NaN()}
}

func NewSixtyFoot() *Split { return NewSplit("sixty_foot_s", SixtyFootDistance) }

func (s *Split) Name() string { return s.name }

func (s *Split) Observe(x sim.Sample) {
	if !math.IsNaN(s.time) {
		return
	}
	if x.Distance >= s.distance {
		s.time = crossing(s.prev, x, s.seen, func(p sim.Sample) float64 { return p.Distance }, s.distance)
	}
	s.prev, s.seen = x, true
}

func (s *Split) Value() float64 { return s.time }

func (s *Split) Reset() {
	s.time = math.NaN()
	s.prev, s.seen = sim.Sample{}, false
}

// ZeroTo records the time to reach a target speed (m/s).
type ZeroTo struct {
	name   string
	target float64
	time   float64
	prev   sim.Sample
	seen   bool
}

func NewZeroTo(name string, target float64) *ZeroTo {
	return &ZeroTo{name: name, target: target, time: math.NaN()}
}

// NewZeroTo100 tracks 0-100 km/h.
func NewZeroTo100() *ZeroTo { return NewZeroTo("zero_to_100kmh_s", 100/3.6) }

func (z *ZeroTo) Name() string { return z.name }

func (z *ZeroTo) Observe(x sim.Sample) {
	if !math.IsNaN(z.time) {
		return
	}
	if x.Speed >= z.target {
		z.time = crossing(z.prev, x, z.seen, func(p sim.Sample) float64 { return p.Speed }, z.target)
	}
	z.prev, z.seen = x, true
}

func (z *ZeroTo) Value() float64 { return z.time }

func (z *ZeroTo) Reset() {
	z.time = math.NaN()
	z.prev, z.seen = sim.Sample{}, false
}

// crossing interpolates the time at which field reaches target between
// two consecutive samples.
func crossing(prev, cur sim.Sample, havePrev bool, field func(sim.Sample) float64, target float64) float64 {
	if !havePrev {
		return cur.Time
	}
	a, b := field(prev), field(cur)
	if b == a {
		return cur.Time
	}
	frac := (target - a) / (b - a)
	return prev.Time + frac*(cur.Time-prev.Time)
}
