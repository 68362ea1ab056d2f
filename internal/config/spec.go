package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/qmsim/internal/curve"
	"github.com/san-kum/qmsim/internal/vehicle"
)

// Defaults applied when a car spec leaves a field out.
const (
	DefaultWheelRadius       = 0.34
	DefaultRollingResistance = 0.015
	DefaultBaseMu            = 1.05
	DefaultCompound          = vehicle.Summer

	DefaultGearbox      = vehicle.Automatic
	DefaultFinalDrive   = 3.5
	DefaultIdleRPM      = 900
	DefaultRedlineRPM   = 7000
	DefaultShiftTime    = 0.30
	DefaultEngineEff    = 0.36
	DefaultDrivelineEff = 0.90

	DefaultSingleSpeedRatio = 9.0
	DefaultMotorMaxRPM      = 18000
	DefaultMotorEff         = 0.92
	DefaultInverterEff      = 0.96
)

// DefaultGearRatios is used when an ICE gearbox lists no ratios.
var DefaultGearRatios = []float64{3.0, 2.0, 1.4, 1.0}

// CarSpec is the human-authored description of one car:
// Car -> Vehicle -> Tire, Car -> Powertrain -> Motors/Gearbox/Efficiency.
// Optional numeric fields are pointers so that an explicit zero can be
// told apart from an omitted value.
type CarSpec struct {
	Name       string         `yaml:"name"`
	Vehicle    VehicleSpec    `yaml:"vehicle"`
	Powertrain PowertrainSpec `yaml:"powertrain"`
}

type VehicleSpec struct {
	Mass              float64  `yaml:"mass"`
	CdA               float64  `yaml:"CdA"`
	WheelRadius       *float64 `yaml:"wheel_radius_m,omitempty"`
	RollingResistance *float64 `yaml:"rolling_resistance,omitempty"`
	Tire              TireSpec `yaml:"tire"`
}

type TireSpec struct {
	WidthMM  float64  `yaml:"width_mm"`
	Compound string   `yaml:"compound,omitempty"`
	BaseMu   *float64 `yaml:"base_mu,omitempty"`
}

type PowertrainSpec struct {
	Type         string         `yaml:"type"`          // ICE or BEV
	DrivingAxles string         `yaml:"driving_axles"` // RWD, FWD or AWD
	Motors       []MotorSpec    `yaml:"motors"`
	Gearbox      GearboxSpec    `yaml:"gearbox,omitempty"`
	Efficiency   EfficiencySpec `yaml:"efficiency,omitempty"`
}

type MotorSpec struct {
	MinRPM      *float64     `yaml:"min_rpm,omitempty"`
	MaxRPM      *float64     `yaml:"max_rpm,omitempty"`
	TorqueCurve [][2]float64 `yaml:"torque_curve_rpm_nm"`
}

type GearboxSpec struct {
	Type       string    `yaml:"type,omitempty"` // manual or auto
	GearRatios []float64 `yaml:"gear_ratios,omitempty"`
	FinalDrive *float64  `yaml:"final_drive,omitempty"`
	LaunchRPM  *float64  `yaml:"launch_rpm,omitempty"`
	ShiftRPM   *float64  `yaml:"shift_rpm,omitempty"`
	ShiftTime  *float64  `yaml:"shift_time_s,omitempty"`
	Ratio      *float64  `yaml:"ratio,omitempty"` // single-speed reduction
}

type EfficiencySpec struct {
	Engine    *float64 `yaml:"engine,omitempty"`
	Driveline *float64 `yaml:"driveline,omitempty"`
	Motor     *float64 `yaml:"motor,omitempty"`
	Inverter  *float64 `yaml:"inverter,omitempty"`
}

// ToCar maps the spec onto a runtime car, filling defaults. fallbackName
// is used when the spec has no name of its own.
func (s *CarSpec) ToCar(fallbackName string) (*vehicle.Car, error) {
	name := s.Name
	if name == "" {
		name = fallbackName
	}

	drivetrain, ok := vehicle.ParseDrivetrain(s.Powertrain.DrivingAxles)
	if !ok {
		return nil, &vehicle.ConfigurationError{
			Field:  "powertrain.driving_axles",
			Reason: fmt.Sprintf("unknown drivetrain %q, want one of %s", s.Powertrain.DrivingAxles, DrivetrainList()),
		}
	}

	compound := vehicle.Compound(s.Vehicle.Tire.Compound)
	if compound == "" {
		compound = DefaultCompound
	}
	if !compound.Known() {
		logrus.WithField("car", name).Warnf("unknown tire compound %q, using grip factor 1.0 (known: %s)", compound, CompoundList())
	}

	pt, err := s.Powertrain.build()
	if err != nil {
		return nil, err
	}

	return vehicle.New(vehicle.Params{
		Name:              name,
		Mass:              s.Vehicle.Mass,
		CdA:               s.Vehicle.CdA,
		WheelRadius:       or(s.Vehicle.WheelRadius, DefaultWheelRadius),
		RollingResistance: or(s.Vehicle.RollingResistance, DefaultRollingResistance),
		BaseMu:            or(s.Vehicle.Tire.BaseMu, DefaultBaseMu),
		TireWidthMM:       s.Vehicle.Tire.WidthMM,
		Compound:          compound,
		Drivetrain:        drivetrain,
		Powertrain:        pt,
	})
}

// CompoundList names the tabulated tire compounds, least grip first.
func CompoundList() string {
	return strings.Join(lo.Map(vehicle.Compounds(), func(c vehicle.Compound, _ int) string { return string(c) }), ", ")
}

func DrivetrainList() string {
	return strings.Join(lo.Map(vehicle.Drivetrains(), func(d vehicle.Drivetrain, _ int) string { return string(d) }), ", ")
}

// Kind is the upper-cased powertrain type.
func (p *PowertrainSpec) Kind() string {
	return strings.ToUpper(strings.TrimSpace(p.Type))
}

func (p *PowertrainSpec) build() (vehicle.Powertrain, error) {
	kind := p.Kind()
	if kind != "ICE" && kind != "BEV" {
		return nil, &vehicle.ConfigurationError{Field: "powertrain.type", Reason: fmt.Sprintf("unknown type %q", p.Type)}
	}
	if len(p.Motors) == 0 {
		return nil, &vehicle.ConfigurationError{Field: "powertrain.motors", Reason: "at least one motor is required"}
	}
	m := p.Motors[0]
	if len(m.TorqueCurve) == 0 {
		return nil, &vehicle.ConfigurationError{Field: "torque_curve_rpm_nm", Reason: "missing", Err: curve.ErrEmpty}
	}

	gb := p.Gearbox
	eff := p.Efficiency

	if kind == "BEV" {
		return &vehicle.DirectDrive{
			Ratio:              or(gb.Ratio, DefaultSingleSpeedRatio),
			MaxMotorRPM:        or(m.MaxRPM, DefaultMotorMaxRPM),
			MotorEfficiency:    or(eff.Motor, DefaultMotorEff),
			InverterEfficiency: or(eff.Inverter, DefaultInverterEff),
			TorqueCurve:        curve.FromPairs(m.TorqueCurve),
		}, nil
	}

	box := vehicle.Gearbox(strings.ToLower(gb.Type))
	if box == "" {
		box = DefaultGearbox
	}
	ratios := gb.GearRatios
	if ratios == nil {
		ratios = DefaultGearRatios
	}
	idle := or(m.MinRPM, DefaultIdleRPM)
	redline := or(m.MaxRPM, DefaultRedlineRPM)

	return &vehicle.Geared{
		Gearbox:             box,
		GearRatios:          append([]float64(nil), ratios...),
		FinalDrive:          or(gb.FinalDrive, DefaultFinalDrive),
		IdleRPM:             idle,
		LaunchRPM:           or(gb.LaunchRPM, idle),
		ShiftRPM:            or(gb.ShiftRPM, redline),
		RedlineRPM:          redline,
		ShiftTime:           or(gb.ShiftTime, DefaultShiftTime),
		EngineEfficiency:    or(eff.Engine, DefaultEngineEff),
		DrivelineEfficiency: or(eff.Driveline, DefaultDrivelineEff),
		TorqueCurve:         curve.FromPairs(m.TorqueCurve),
	}, nil
}

func or(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func ptr(v float64) *float64 { return &v }
