package sim

import (
	"fmt"

	"github.com/san-kum/qmsim/internal/vehicle"
)

const (
	DefaultDt        = 0.01
	DefaultTimeLimit = 60.0
)

type Config struct {
	Dt        float64 // s
	Distance  float64 // m
	TimeLimit float64 // s, hard cutoff
}

func DefaultConfig() Config {
	return Config{
		Dt:        DefaultDt,
		Distance:  vehicle.QuarterMile,
		TimeLimit: DefaultTimeLimit,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if !(c.Distance > 0) {
		return fmt.Errorf("%w: distance must be positive, got %g", ErrInvalidConfig, c.Distance)
	}
	if !(c.TimeLimit > 0) {
		return fmt.Errorf("%w: time limit must be positive, got %g", ErrInvalidConfig, c.TimeLimit)
	}
	return nil
}

// MaxSteps bounds the number of integration steps for this config.
func (c Config) MaxSteps() int {
	return int(c.TimeLimit/c.Dt) + 2
}

// Sample is one telemetry row. Index 0 of a run is the rest state.
type Sample struct {
	Time            float64 // s
	Distance        float64 // m
	Speed           float64 // m/s
	Accel           float64 // m/s²
	Gear            int     // one-based
	EngineRPM       float64
	MotorRPM        float64
	WheelTorque     float64 // N·m
	DriveForce      float64 // N, before the traction clamp
	UsableForce     float64 // N, after the traction clamp
	TractionLimited bool
	Shifting        bool
}

type Telemetry struct {
	Samples []Sample
}

func (t *Telemetry) Len() int { return len(t.Samples) }

func (t *Telemetry) column(f func(Sample) float64) []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = f(s)
	}
	return out
}

func (t *Telemetry) Times() []float64     { return t.column(func(s Sample) float64 { return s.Time }) }
func (t *Telemetry) Distances() []float64 { return t.column(func(s Sample) float64 { return s.Distance }) }
func (t *Telemetry) Speeds() []float64    { return t.column(func(s Sample) float64 { return s.Speed }) }
func (t *Telemetry) Accels() []float64    { return t.column(func(s Sample) float64 { return s.Accel }) }
func (t *Telemetry) EngineRPMs() []float64 {
	return t.column(func(s Sample) float64 { return s.EngineRPM })
}
func (t *Telemetry) MotorRPMs() []float64 {
	return t.column(func(s Sample) float64 { return s.MotorRPM })
}
func (t *Telemetry) WheelTorques() []float64 {
	return t.column(func(s Sample) float64 { return s.WheelTorque })
}
func (t *Telemetry) Gears() []int {
	out := make([]int, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Gear
	}
	return out
}

// Last returns the final sample, or the zero Sample when empty.
func (t *Telemetry) Last() Sample {
	if len(t.Samples) == 0 {
		return Sample{}
	}
	return t.Samples[len(t.Samples)-1]
}

type Summary struct {
	ElapsedTime float64 // s
	TrapSpeed   float64 // m/s
	ShiftCount  int
	Finished    bool // false when the time limit fired first
}

type Result struct {
	Car        *vehicle.Car
	Config     Config
	Telemetry  Telemetry
	Summary    Summary
	Metrics    map[string]float64
	StepsTaken int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}
