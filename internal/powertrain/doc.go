// Package powertrain computes wheel drive force and runs the upshift
// state machine.
//
// Every function here is a pure state transition: it takes the current
// [State] by value and returns the successor alongside its result. The
// order of operations inside [Force] matters for numerical parity:
// shaft speed is computed first, the torque lookup uses it, and only then
// is the shift-entry condition evaluated against that same speed.
package powertrain
