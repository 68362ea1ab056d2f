package sim

import (
	"context"
	"math"

	"github.com/san-kum/qmsim/internal/powertrain"
	"github.com/san-kum/qmsim/internal/vehicle"
)

type Simulator struct {
	car     *vehicle.Car
	metrics []Metric
}

func New(car *vehicle.Car) *Simulator {
	return &Simulator{
		car:     car,
		metrics: make([]Metric, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.car == nil {
		return nil, ErrNoCar
	}

	car := s.car
	result := &Result{
		Car:       car,
		Config:    cfg,
		Telemetry: Telemetry{Samples: make([]Sample, 0, estimateSteps(cfg))},
		Metrics:   make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	st := powertrain.NewState()
	t, x, v := 0.0, 0.0, 0.0
	dt := cfg.Dt

	traction := car.TractionLimit()
	rolling := car.RollingForce()

	s.record(result, Sample{Gear: st.GearNumber()})

	for x < cfg.Distance && t <= cfg.TimeLimit {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		out, next := powertrain.Force(car, st, v, dt)
		st = next

		usable := math.Min(out.Force, traction)
		net := usable - car.DragForce(v) - rolling
		a := net / car.Mass

		v = math.Max(0, v+a*dt)
		x += v * dt
		t += dt

		if !finite(a, v, x) {
			return result, &StepError{Car: car.Name, Step: result.StepsTaken, Time: t, Wrapped: ErrInvalidState}
		}

		s.record(result, Sample{
			Time:            t,
			Distance:        x,
			Speed:           v,
			Accel:           a,
			Gear:            st.GearNumber(),
			EngineRPM:       st.EngineRPM,
			MotorRPM:        st.MotorRPM,
			WheelTorque:     out.WheelTorque,
			DriveForce:      out.Force,
			UsableForce:     usable,
			TractionLimited: out.Force > traction,
			Shifting:        out.Shifting,
		})
		result.StepsTaken++
	}

	result.Summary = Summary{
		ElapsedTime: t,
		TrapSpeed:   v,
		ShiftCount:  st.ShiftCount,
		Finished:    x >= cfg.Distance,
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(r *Result, sample Sample) {
	r.Telemetry.Samples = append(r.Telemetry.Samples, sample)
	for _, m := range s.metrics {
		m.Observe(sample)
	}
}

// most cars finish well inside the limit; size for ~15 s
func estimateSteps(cfg Config) int {
	return min(cfg.MaxSteps(), int(15/cfg.Dt)+1)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
