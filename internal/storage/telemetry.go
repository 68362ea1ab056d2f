package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/sim"
)

var telemetryHeader = []string{
	"lane", "car", "time", "distance", "speed", "accel", "gear",
	"engine_rpm", "motor_rpm", "wheel_torque", "shifting", "traction_limited",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteTelemetryCSV writes every trace as long-format rows keyed by lane,
// the trace's index in traces. Car names need not be unique.
func WriteTelemetryCSV(w io.Writer, traces []race.Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(telemetryHeader); err != nil {
		return err
	}

	for lane, tr := range traces {
		for _, s := range tr.Telemetry.Samples {
			row := []string{
				strconv.Itoa(lane),
				tr.Name,
				formatFloat(s.Time),
				formatFloat(s.Distance),
				formatFloat(s.Speed),
				formatFloat(s.Accel),
				strconv.Itoa(s.Gear),
				formatFloat(s.EngineRPM),
				formatFloat(s.MotorRPM),
				formatFloat(s.WheelTorque),
				strconv.FormatBool(s.Shifting),
				strconv.FormatBool(s.TractionLimited),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTelemetryCSV is the inverse of WriteTelemetryCSV. Traces come back
// in the order their lanes first appear.
func ReadTelemetryCSV(r io.Reader) ([]race.Trace, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(telemetryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []race.Trace{}, nil
	}

	traces := make([]race.Trace, 0)
	index := make(map[int]int)

	for i, rec := range records[1:] {
		lane, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("telemetry line %d: lane: %w", i+2, err)
		}
		s, err := parseSample(rec[2:])
		if err != nil {
			return nil, fmt.Errorf("telemetry line %d: %w", i+2, err)
		}
		j, ok := index[lane]
		if !ok {
			j = len(traces)
			index[lane] = j
			traces = append(traces, race.Trace{Name: rec[1], Telemetry: &sim.Telemetry{}})
		}
		traces[j].Telemetry.Samples = append(traces[j].Telemetry.Samples, s)
	}
	return traces, nil
}

func parseSample(rec []string) (sim.Sample, error) {
	var s sim.Sample
	floats := []*float64{&s.Time, &s.Distance, &s.Speed, &s.Accel}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return s, err
		}
		*dst = v
	}

	gear, err := strconv.Atoi(rec[4])
	if err != nil {
		return s, err
	}
	s.Gear = gear

	floats = []*float64{&s.EngineRPM, &s.MotorRPM, &s.WheelTorque}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(rec[i+5], 64)
		if err != nil {
			return s, err
		}
		*dst = v
	}

	if s.Shifting, err = strconv.ParseBool(rec[8]); err != nil {
		return s, err
	}
	if s.TractionLimited, err = strconv.ParseBool(rec[9]); err != nil {
		return s, err
	}
	return s, nil
}
