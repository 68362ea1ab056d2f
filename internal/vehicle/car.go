package vehicle

import (
	"fmt"
	"math"
)

const (
	G              = 9.81    // m/s²
	RhoAir         = 1.225   // kg/m³, sea level
	MinWheelRadius = 0.2     // m
	QuarterMile    = 402.336 // m
)

// Car is the immutable runtime description of one vehicle.
type Car struct {
	Name              string
	Mass              float64 // kg
	CdA               float64 // m²
	WheelRadius       float64 // m
	RollingResistance float64
	Mu                float64 // base friction times grip multiplier
	DriveFactor       float64
	Drivetrain        Drivetrain
	TireWidthMM       float64
	Compound          Compound
	Powertrain        Powertrain
}

// Params holds the inputs to New. Mu is computed from BaseMu and the
// tire; DriveFactor from the drivetrain.
type Params struct {
	Name              string
	Mass              float64
	CdA               float64
	WheelRadius       float64
	RollingResistance float64
	BaseMu            float64
	TireWidthMM       float64
	Compound          Compound
	Drivetrain        Drivetrain
	Powertrain        Powertrain
}

// New validates p and builds a Car. Every error is a *ConfigurationError.
func New(p Params) (*Car, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Car{
		Name:              p.Name,
		Mass:              p.Mass,
		CdA:               p.CdA,
		WheelRadius:       p.WheelRadius,
		RollingResistance: p.RollingResistance,
		Mu:                p.BaseMu * GripMultiplier(p.TireWidthMM, p.Compound),
		DriveFactor:       p.Drivetrain.DriveFactor(),
		Drivetrain:        p.Drivetrain,
		TireWidthMM:       p.TireWidthMM,
		Compound:          p.Compound,
		Powertrain:        p.Powertrain,
	}, nil
}

// EffectiveRadius is the wheel radius floored at MinWheelRadius.
func (c *Car) EffectiveRadius() float64 {
	return math.Max(c.WheelRadius, MinWheelRadius)
}

// TractionLimit is the largest drive force the tires can transmit (N).
func (c *Car) TractionLimit() float64 {
	return c.Mu * c.Mass * G * c.DriveFactor
}

// RollingForce is the constant rolling resistance force (N).
func (c *Car) RollingForce() float64 {
	return c.RollingResistance * c.Mass * G
}

// DragForce is the aerodynamic drag at speed v (N).
func (c *Car) DragForce(v float64) float64 {
	return 0.5 * RhoAir * c.CdA * v * v
}

// Geared returns the geared powertrain, if that is the variant.
func (c *Car) Geared() (*Geared, bool) {
	g, ok := c.Powertrain.(*Geared)
	return g, ok
}

// GearCount is 1 for direct drive.
func (c *Car) GearCount() int {
	if g, ok := c.Geared(); ok {
		return g.GearCount()
	}
	return 1
}

func (c *Car) String() string {
	return fmt.Sprintf("%s (%s %s, %.0f kg)", c.Name, c.Powertrain.Kind(), c.Drivetrain, c.Mass)
}

func (p Params) validate() error {
	switch {
	case !positive(p.Mass):
		return invalid("mass", "must be positive, got %g", p.Mass)
	case !nonNegative(p.CdA):
		return invalid("CdA", "must not be negative, got %g", p.CdA)
	case !positive(p.WheelRadius):
		return invalid("wheel_radius_m", "must be positive, got %g", p.WheelRadius)
	case !nonNegative(p.RollingResistance):
		return invalid("rolling_resistance", "must not be negative, got %g", p.RollingResistance)
	case !positive(p.BaseMu):
		return invalid("base_mu", "must be positive, got %g", p.BaseMu)
	case !positive(p.TireWidthMM):
		return invalid("tire.width_mm", "must be positive, got %g", p.TireWidthMM)
	}
	if p.Drivetrain.DriveFactor() == 0 {
		return invalid("driving_axles", "unknown drivetrain %q", p.Drivetrain)
	}

	switch pt := p.Powertrain.(type) {
	case *Geared:
		return validateGeared(pt)
	case *DirectDrive:
		return validateDirect(pt)
	case nil:
		return invalid("powertrain", "missing")
	default:
		return invalid("powertrain", "unsupported type %T", pt)
	}
}

func validateGeared(g *Geared) error {
	if g == nil {
		return invalid("powertrain", "missing")
	}
	if len(g.GearRatios) == 0 {
		return invalid("gearbox.gear_ratios", "must not be empty")
	}
	for i, r := range g.GearRatios {
		if !positive(r) {
			return invalid("gearbox.gear_ratios", "ratio %d must be positive, got %g", i+1, r)
		}
	}
	switch {
	case g.Gearbox != Manual && g.Gearbox != Automatic:
		return invalid("gearbox.type", "unknown gearbox %q", g.Gearbox)
	case !positive(g.FinalDrive):
		return invalid("gearbox.final_drive", "must be positive, got %g", g.FinalDrive)
	case !nonNegative(g.IdleRPM):
		return invalid("motors.min_rpm", "must not be negative, got %g", g.IdleRPM)
	case !nonNegative(g.LaunchRPM):
		return invalid("gearbox.launch_rpm", "must not be negative, got %g", g.LaunchRPM)
	case !positive(g.RedlineRPM):
		return invalid("motors.max_rpm", "must be positive, got %g", g.RedlineRPM)
	case !nonNegative(g.ShiftRPM) || g.ShiftRPM > g.RedlineRPM:
		return invalid("gearbox.shift_rpm", "must be within [0, %g], got %g", g.RedlineRPM, g.ShiftRPM)
	case !positive(g.ShiftTime):
		return invalid("gearbox.shift_time_s", "must be positive, got %g", g.ShiftTime)
	case !fraction(g.EngineEfficiency):
		return invalid("efficiency.engine", "must be in (0, 1], got %g", g.EngineEfficiency)
	case !fraction(g.DrivelineEfficiency):
		return invalid("efficiency.driveline", "must be in (0, 1], got %g", g.DrivelineEfficiency)
	}
	if err := g.TorqueCurve.Validate(); err != nil {
		return &ConfigurationError{Field: "torque_curve_rpm_nm", Reason: "invalid", Err: err}
	}
	return nil
}

func validateDirect(d *DirectDrive) error {
	if d == nil {
		return invalid("powertrain", "missing")
	}
	switch {
	case !positive(d.Ratio):
		return invalid("gearbox.ratio", "must be positive, got %g", d.Ratio)
	case !positive(d.MaxMotorRPM):
		return invalid("motors.max_rpm", "must be positive, got %g", d.MaxMotorRPM)
	case !fraction(d.MotorEfficiency):
		return invalid("efficiency.motor", "must be in (0, 1], got %g", d.MotorEfficiency)
	case !fraction(d.InverterEfficiency):
		return invalid("efficiency.inverter", "must be in (0, 1], got %g", d.InverterEfficiency)
	}
	if err := d.TorqueCurve.Validate(); err != nil {
		return &ConfigurationError{Field: "torque_curve_rpm_nm", Reason: "invalid", Err: err}
	}
	return nil
}

// NaN fails every comparison, so these reject it too.
func positive(v float64) bool    { return v > 0 && !math.IsInf(v, 0) }
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
func fraction(v float64) bool    { return v > 0 && v <= 1 }
