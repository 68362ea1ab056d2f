package metrics

import (
	"math"

	"github.com/san-kum/qmsim/internal/sim"
)

type PeakAccel struct {
	name string
	peak float64
}

func NewPeakAccel() *PeakAccel {
	return &PeakAccel{name: "peak_accel_g"}
}

func (p *PeakAccel) Name() string { return p.name }

func (p *PeakAccel) Observe(x sim.Sample) {
	p.peak = math.Max(p.peak, x.Accel)
}

// Value is in multiples of standard gravity.
func (p *PeakAccel) Value() float64 { return p.peak / 9.81 }

func (p *PeakAccel) Reset() { p.peak = 0 }

// ShiftWindow accumulates time spent with drive cut by a shift.
type ShiftWindow struct {
	name  string
	total float64
	last  float64
}

func NewShiftWindow() *ShiftWindow {
	return &ShiftWindow{name: "shift_window_s"}
}

func (s *ShiftWindow) Name() string { return s.name }

func (s *ShiftWindow) Observe(x sim.Sample) {
	if x.Shifting {
		s.total += x.Time - s.last
	}
	s.last = x.Time
}

func (s *ShiftWindow) Value() float64 { return s.total }

func (s *ShiftWindow) Reset() { s.total, s.last = 0, 0 }

// TractionLimited is the fraction of steps where the tires, not the
// powertrain, limited drive force.
type TractionLimited struct {
	name    string
	limited int
	samples int
}

func NewTractionLimited() *TractionLimited {
	return &TractionLimited{name: "traction_limited"}
}

func (t *TractionLimited) Name() string { return t.name }

func (t *TractionLimited) Observe(x sim.Sample) {
	if x.Time == 0 {
		return
	}
	t.samples++
	if x.TractionLimited {
		t.limited++
	}
}

func (t *TractionLimited) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return float64(t.limited) / float64(t.samples)
}

func (t *TractionLimited) Reset() {
	t.limited = 0
	t.samples = 0
}

// Default returns a fresh metric set for one run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewSixtyFoot(),
		NewZeroTo100(),
		NewPeakAccel(),
		NewShiftWindow(),
		NewTractionLimited(),
	}
}
