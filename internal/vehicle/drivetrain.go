package vehicle

import (
	"slices"
	"strings"
)

// Drivetrain names the driven axles.
type Drivetrain string

const (
	RWD Drivetrain = "RWD"
	FWD Drivetrain = "FWD"
	AWD Drivetrain = "AWD"
)

// share of the vehicle weight usable for traction
var driveFactors = map[Drivetrain]float64{
	RWD: 0.93,
	FWD: 0.90,
	AWD: 1.00,
}

// ParseDrivetrain is case-insensitive.
func ParseDrivetrain(s string) (Drivetrain, bool) {
	d := Drivetrain(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := driveFactors[d]
	return d, ok
}

// DriveFactor returns the traction derating for d, 0 if unknown.
func (d Drivetrain) DriveFactor() float64 {
	return driveFactors[d]
}

// Drivetrains lists the known layouts in a stable order.
func Drivetrains() []Drivetrain {
	out := make([]Drivetrain, 0, len(driveFactors))
	for d := range driveFactors {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
