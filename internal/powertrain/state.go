package powertrain

import "fmt"

// State is the per-run drivetrain state. The zero value is a car at rest
// in first gear and not shifting.
type State struct {
	Gear        int     // zero-based gear index
	InShift     bool    // drive suppressed while true
	ShiftTimer  float64 // seconds left in the zero-torque window
	PendingGear int     // gear committed when the window closes
	ShiftCount  int
	EngineRPM   float64 // geared only
	MotorRPM    float64 // direct drive only
}

// NewState returns the initial state for a run.
func NewState() State {
	return State{}
}

// GearNumber is the one-based gear shown to drivers.
func (s State) GearNumber() int {
	return s.Gear + 1
}

func (s State) String() string {
	if s.InShift {
		return fmt.Sprintf("gear %d->%d (%.3fs left)", s.GearNumber(), s.PendingGear+1, s.ShiftTimer)
	}
	return fmt.Sprintf("gear %d", s.GearNumber())
}
