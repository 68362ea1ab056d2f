package vehicle

import "github.com/san-kum/qmsim/internal/curve"

// Powertrain is either *Geared or *DirectDrive.
type Powertrain interface {
	// Kind is the short label used in summaries ("ICE" or "BEV").
	Kind() string
	// Torque looks up the curve at the given shaft speed.
	Torque(rpm float64) float64
	// MaxRPM is the highest shaft speed the unit can reach.
	MaxRPM() float64

	powertrain()
}

// Gearbox selects how upshifts are executed.
type Gearbox string

const (
	// Manual gearboxes cut drive for ShiftTime during each upshift.
	Manual Gearbox = "manual"
	// Automatic gearboxes change ratio without a zero-torque window.
	Automatic Gearbox = "auto"
)

// Geared is a combustion engine driving through a multi-speed gearbox.
type Geared struct {
	Gearbox             Gearbox
	GearRatios          []float64
	FinalDrive          float64
	IdleRPM             float64
	LaunchRPM           float64
	ShiftRPM            float64
	RedlineRPM          float64
	ShiftTime           float64 // seconds
	EngineEfficiency    float64
	DrivelineEfficiency float64
	TorqueCurve         curve.Curve // rpm -> N·m
}

func (g *Geared) Kind() string               { return "ICE" }
func (g *Geared) Torque(rpm float64) float64 { return g.TorqueCurve.At(rpm) }
func (g *Geared) MaxRPM() float64            { return g.RedlineRPM }
func (g *Geared) powertrain()                {}

// GearCount is the number of forward gears.
func (g *Geared) GearCount() int { return len(g.GearRatios) }

// TopGear is the index of the highest gear.
func (g *Geared) TopGear() int { return len(g.GearRatios) - 1 }

// Ratio returns the ratio for a zero-based gear index, clamped to the
// available gears.
func (g *Geared) Ratio(gear int) float64 {
	gear = min(max(gear, 0), len(g.GearRatios)-1)
	return g.GearRatios[gear]
}

// Efficiency is the combined engine and driveline efficiency.
func (g *Geared) Efficiency() float64 {
	return g.EngineEfficiency * g.DrivelineEfficiency
}

// DirectDrive is an electric motor behind a single fixed reduction.
type DirectDrive struct {
	Ratio              float64
	MaxMotorRPM        float64
	MotorEfficiency    float64
	InverterEfficiency float64
	TorqueCurve        curve.Curve // rpm -> N·m
}

func (d *DirectDrive) Kind() string               { return "BEV" }
func (d *DirectDrive) Torque(rpm float64) float64 { return d.TorqueCurve.At(rpm) }
func (d *DirectDrive) MaxRPM() float64            { return d.MaxMotorRPM }
func (d *DirectDrive) powertrain()                {}

// Efficiency is the combined motor and inverter efficiency.
func (d *DirectDrive) Efficiency() float64 {
	return d.MotorEfficiency * d.InverterEfficiency
}
