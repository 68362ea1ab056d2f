package vehicle

import "math"

// Compound is a named tire compound.
type Compound string

const (
	AllSeason  Compound = "all_season"
	Summer     Compound = "summer"
	Track      Compound = "track"
	DragRadial Compound = "drag_radial"
)

// BaselineTireWidth is the width (mm) at which the width factor is 1.
const BaselineTireWidth = 245.0

var compoundGrip = map[Compound]float64{
	AllSeason:  0.95,
	Summer:     1.00,
	Track:      1.08,
	DragRadial: 1.15,
}

// Compounds lists the known compounds from least to most grip.
func Compounds() []Compound {
	return []Compound{AllSeason, Summer, Track, DragRadial}
}

// Grip returns the compound multiplier; unknown compounds count as 1.
func (c Compound) Grip() float64 {
	if g, ok := compoundGrip[c]; ok {
		return g
	}
	return 1.0
}

// Known reports whether c is one of the tabulated compounds.
func (c Compound) Known() bool {
	_, ok := compoundGrip[c]
	return ok
}

// GripMultiplier combines tire width and compound into a single factor
// applied to the base friction coefficient. Width scales sub-linearly
// around a 245 mm baseline and is clamped to [0.90, 1.18].
func GripMultiplier(widthMM float64, c Compound) float64 {
	width := math.Pow(widthMM/BaselineTireWidth, 0.30)
	width = math.Min(math.Max(width, 0.90), 1.18)
	return width * c.Grip()
}
