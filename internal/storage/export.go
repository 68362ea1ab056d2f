package storage

import (
	"encoding/json"
	"io"

	"github.com/samber/lo"

	"github.com/san-kum/qmsim/internal/race"
)

type ExportData struct {
	Run  RunMetadata `json:"run"`
	Cars []ExportCar `json:"telemetry"`
}

// ExportCar holds one car's telemetry as parallel columns.
type ExportCar struct {
	Name        string    `json:"name"`
	Steps       int       `json:"steps"`
	Times       []float64 `json:"time"`
	Distances   []float64 `json:"distance"`
	Speeds      []float64 `json:"speed"`
	Accels      []float64 `json:"accel"`
	Gears       []int     `json:"gear"`
	EngineRPMs  []float64 `json:"engine_rpm"`
	MotorRPMs   []float64 `json:"motor_rpm"`
	WheelTorque []float64 `json:"wheel_torque"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, traces []race.Trace) error {
	data := ExportData{
		Run: *meta,
		Cars: lo.Map(traces, func(tr race.Trace, _ int) ExportCar {
			t := tr.Telemetry
			return ExportCar{
				Name:        tr.Name,
				Steps:       t.Len(),
				Times:       t.Times(),
				Distances:   t.Distances(),
				Speeds:      t.Speeds(),
				Accels:      t.Accels(),
				Gears:       t.Gears(),
				EngineRPMs:  t.EngineRPMs(),
				MotorRPMs:   t.MotorRPMs(),
				WheelTorque: t.WheelTorques(),
			}
		}),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
