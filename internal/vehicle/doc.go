// Package vehicle describes the runtime car used by the simulator.
//
// A [Car] is immutable once built by [New]. It carries geometry, mass,
// aerodynamics, the effective tire grip and exactly one [Powertrain]:
//
//   - [Geared]: a combustion engine behind a multi-speed gearbox
//   - [DirectDrive]: an electric motor behind a single fixed reduction
//
// Consumers select the variant with a type switch. All structural checks
// happen in [New]; a Car that exists is valid, and the simulator never
// re-validates it.
package vehicle
