package powertrain

import (
	"math"

	"github.com/san-kum/qmsim/internal/vehicle"
)

// below this speed the engine is held at launch rpm (clutch slip)
const launchSpeed = 1.5 // m/s

// Output is the drive produced during one step.
type Output struct {
	Force       float64 // N at the contact patch, before the traction clamp
	WheelTorque float64 // N·m after gearing and losses
	EngineRPM   float64
	MotorRPM    float64
	Shifting    bool // drive suppressed by an open shift window
}

// WheelRPM converts road speed to wheel speed. The radius is floored at
// vehicle.MinWheelRadius.
func WheelRPM(v, radius float64) float64 {
	return v / math.Max(radius, vehicle.MinWheelRadius) * 60 / (2 * math.Pi)
}

// Force computes the drive for one step of length dt at speed v and
// returns it together with the successor state.
//
// For a geared car inside a shift window no force is computed: the timer
// advances and the output is zero. Otherwise the force is computed first
// and the upshift condition is then checked for the next step.
func Force(car *vehicle.Car, st State, v, dt float64) (Output, State) {
	switch pt := car.Powertrain.(type) {
	case *vehicle.Geared:
		if st.InShift {
			st = AdvanceShift(st, dt)
			return Output{EngineRPM: st.EngineRPM, Shifting: true}, st
		}
		out, next := GearedForce(car, pt, st, v)
		return out, BeginShift(pt, next)
	case *vehicle.DirectDrive:
		return DirectForce(car, pt, st, v)
	default:
		return Output{}, st
	}
}

// GearedForce applies the engine law in the current gear. Engine speed is
// floored at launch rpm below 1.5 m/s, at idle above, and capped at
// redline; the result is stored in the returned state.
func GearedForce(car *vehicle.Car, g *vehicle.Geared, st State, v float64) (Output, State) {
	radius := car.EffectiveRadius()
	ratio := g.Ratio(st.Gear) * g.FinalDrive

	rpm := WheelRPM(v, radius) * ratio
	if v < launchSpeed {
		rpm = math.Max(rpm, g.LaunchRPM)
	} else {
		rpm = math.Max(rpm, g.IdleRPM)
	}
	rpm = math.Min(rpm, g.RedlineRPM)
	st.EngineRPM = rpm

	wheelTorque := g.Torque(rpm) * ratio * g.EngineEfficiency * g.DrivelineEfficiency
	return Output{
		Force:       wheelTorque / radius,
		WheelTorque: wheelTorque,
		EngineRPM:   rpm,
	}, st
}

// DirectForce applies the motor law through the fixed reduction. Motor
// speed is capped at the motor's maximum.
func DirectForce(car *vehicle.Car, d *vehicle.DirectDrive, st State, v float64) (Output, State) {
	radius := car.EffectiveRadius()

	rpm := math.Min(WheelRPM(v, radius)*d.Ratio, d.MaxMotorRPM)
	st.MotorRPM = rpm

	wheelTorque := d.Torque(rpm) * d.Ratio * d.MotorEfficiency * d.InverterEfficiency
	return Output{
		Force:       wheelTorque / radius,
		WheelTorque: wheelTorque,
		MotorRPM:    rpm,
	}, st
}
