package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/vehicle"
)

const (
	DefaultDt        = sim.DefaultDt
	DefaultDistance  = vehicle.QuarterMile
	DefaultTimeLimit = sim.DefaultTimeLimit
)

// RaceFile is a yaml document describing a race: integration settings and
// the cars on the grid.
type RaceFile struct {
	Dt        float64   `yaml:"dt"`
	Distance  float64   `yaml:"distance_m"`
	TimeLimit float64   `yaml:"time_limit_s"`
	Cars      []CarSpec `yaml:"cars"`
}

func DefaultRaceFile() *RaceFile {
	cfg := sim.DefaultConfig()
	return &RaceFile{
		Dt:        cfg.Dt,
		Distance:  cfg.Distance,
		TimeLimit: cfg.TimeLimit,
	}
}

// Load reads a race file. A file holding a single car (no "cars" key) is
// accepted as a one-car race.
func Load(path string) (*RaceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*RaceFile, error) {
	rf := DefaultRaceFile()
	if err := yaml.Unmarshal(data, rf); err != nil {
		return nil, err
	}
	if len(rf.Cars) == 0 {
		var single CarSpec
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, err
		}
		if single.Powertrain.Type == "" {
			return nil, fmt.Errorf("no cars defined")
		}
		rf.Cars = []CarSpec{single}
	}
	return rf, nil
}

func Save(path string, rf *RaceFile) error {
	data, err := yaml.Marshal(rf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig returns the integration settings of the race.
func (rf *RaceFile) SimConfig() sim.Config {
	return sim.Config{
		Dt:        rf.Dt,
		Distance:  rf.Distance,
		TimeLimit: rf.TimeLimit,
	}
}

// BuildCars maps every spec to a runtime car. Unnamed cars are called
// "car N".
func (rf *RaceFile) BuildCars() ([]*vehicle.Car, error) {
	cars := make([]*vehicle.Car, 0, len(rf.Cars))
	for i := range rf.Cars {
		car, err := rf.Cars[i].ToCar(fmt.Sprintf("car %d", i+1))
		if err != nil {
			return nil, fmt.Errorf("car %d: %w", i+1, err)
		}
		cars = append(cars, car)
	}
	return cars, nil
}
