package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/san-kum/qmsim/internal/config"
	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Dt        float64     `json:"dt"`
	Distance  float64     `json:"distance_m"`
	TimeLimit float64     `json:"time_limit_s"`
	Winner    string      `json:"winner,omitempty"`
	Cars      []CarRecord `json:"cars"`
}

// CarRecord is one finishing position. Spec is the resolved car so a run
// can be raced again.
type CarRecord struct {
	Position    int                `json:"position"`
	Name        string             `json:"name"`
	Powertrain  string             `json:"powertrain"`
	Drivetrain  string             `json:"drivetrain"`
	TireWidthMM float64            `json:"tire_width_mm"`
	Compound    string             `json:"compound"`
	Mass        float64            `json:"mass"`
	Gearbox     string             `json:"gearbox,omitempty"`
	Gears       int                `json:"gears,omitempty"`
	ElapsedTime float64            `json:"elapsed_time_s"`
	TrapSpeed   float64            `json:"trap_speed_ms"`
	ShiftCount  int                `json:"shift_count"`
	Finished    bool               `json:"finished"`
	Steps       int                `json:"steps"`
	Metrics     map[string]float64 `json:"metrics"`
	Spec        config.CarSpec     `json:"spec"`
}

func (m *RunMetadata) SimConfig() sim.Config {
	return sim.Config{Dt: m.Dt, Distance: m.Distance, TimeLimit: m.TimeLimit}
}

// RaceFile rebuilds the race that produced this run.
func (m *RunMetadata) RaceFile() *config.RaceFile {
	rf := &config.RaceFile{Dt: m.Dt, Distance: m.Distance, TimeLimit: m.TimeLimit}
	for _, c := range m.Cars {
		rf.Cars = append(rf.Cars, c.Spec.Clone())
	}
	return rf
}

func record(st race.Standing) CarRecord {
	car, sum := st.Car, st.Result.Summary
	rec := CarRecord{
		Position:    st.Position,
		Name:        st.Name,
		Powertrain:  car.Powertrain.Kind(),
		Drivetrain:  string(car.Drivetrain),
		TireWidthMM: car.TireWidthMM,
		Compound:    string(car.Compound),
		Mass:        car.Mass,
		ElapsedTime: sum.ElapsedTime,
		TrapSpeed:   sum.TrapSpeed,
		ShiftCount:  sum.ShiftCount,
		Finished:    sum.Finished,
		Steps:       st.Result.StepsTaken,
		Metrics:     finiteOnly(st.Result.Metrics),
		Spec:        st.Spec.Clone(),
	}
	if g, ok := car.Geared(); ok {
		rec.Gearbox = string(g.Gearbox)
		rec.Gears = g.GearCount()
	}
	return rec
}

// json cannot carry NaN; unreached splits are dropped instead.
func finiteOnly(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// Save writes metadata.json and telemetry.csv under a fresh run directory
// and returns the run id.
func (s *Store) Save(cfg sim.Config, standings race.Standings) (string, error) {
	runID, runDir, err := s.newRunDir(time.Now())
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Dt:        cfg.Dt,
		Distance:  cfg.Distance,
		TimeLimit: cfg.TimeLimit,
	}
	if w, ok := standings.Winner(); ok {
		meta.Winner = w.Name
	}
	for _, st := range standings {
		meta.Cars = append(meta.Cars, record(st))
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, telemetryFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteTelemetryCSV(f, standings.Traces()); err != nil {
		return "", err
	}
	return runID, f.Close()
}

func (s *Store) newRunDir(now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("race_%s", now.Format("20060102_150405"))
	for i := 1; ; i++ {
		id := base
		if i > 1 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortStableFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// Latest returns the newest stored run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no stored runs in %s", s.baseDir)
	}
	return &runs[0], nil
}

func (s *Store) LoadTelemetry(runID string) ([]race.Trace, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTelemetryCSV(f)
}

// CopyTelemetry streams the raw telemetry.csv of a run.
func (s *Store) CopyTelemetry(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
