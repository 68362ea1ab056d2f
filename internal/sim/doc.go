// Package sim integrates a single car's longitudinal motion over a race
// distance.
//
// Each step composes the powertrain drive force, the traction clamp, and
// aerodynamic and rolling resistance into an acceleration, then advances
// speed, distance and time with a fixed step:
//
//	v = max(0, v + a*dt)
//	x = x + v*dt
//	t = t + dt
//
// The run ends when the distance is covered or the time limit is passed.
// A run owns its state exclusively, so independent cars can be simulated
// concurrently with [RunAll].
package sim
