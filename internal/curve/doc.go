// Package curve provides piecewise-linear lookup tables.
//
// A [Curve] is an ordered list of breakpoints, ascending by X. Queries
// between two breakpoints are linearly interpolated; queries outside the
// covered range return the nearest endpoint value. Engine and motor torque
// curves are the main consumers:
//
//	tq := curve.FromPairs([][2]float64{{1000, 300}, {6000, 420}, {7500, 380}})
//	nm := tq.At(4200)
//
// Lookups never fail. Structural problems (an empty curve, breakpoints out
// of order) are reported by [Curve.Validate] when a vehicle is built.
package curve
