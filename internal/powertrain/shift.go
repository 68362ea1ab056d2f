package powertrain

import "github.com/san-kum/qmsim/internal/vehicle"

// BeginShift evaluates the upshift condition against st.EngineRPM. It does
// nothing while already shifting or in top gear. A manual gearbox opens a
// zero-torque window of g.ShiftTime; an automatic commits the next gear
// at once.
func BeginShift(g *vehicle.Geared, st State) State {
	if st.InShift || st.Gear >= g.TopGear() {
		return st
	}
	if st.EngineRPM < g.ShiftRPM {
		return st
	}

	st.PendingGear = st.Gear + 1
	st.ShiftCount++
	if g.Gearbox == vehicle.Manual {
		st.InShift = true
		st.ShiftTimer = g.ShiftTime
		return st
	}
	st.Gear = st.PendingGear
	return st
}

// AdvanceShift burns dt off the shift window and commits the pending gear
// once the timer runs out.
func AdvanceShift(st State, dt float64) State {
	if !st.InShift {
		return st
	}
	st.ShiftTimer -= dt
	if st.ShiftTimer <= 0 {
		st.InShift = false
		st.Gear = st.PendingGear
	}
	return st
}
