package curve

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmpty indicates a curve without breakpoints.
	ErrEmpty = errors.New("curve: no breakpoints")

	// ErrNotAscending indicates breakpoints that are not sorted by X.
	ErrNotAscending = errors.New("curve: breakpoints not ascending")
)

// Point is a single breakpoint.
type Point struct {
	X float64
	Y float64
}

// Curve is a breakpoint table sorted ascending by X.
type Curve []Point

// FromPairs builds a curve from [x, y] pairs as they appear in car specs.
func FromPairs(pairs [][2]float64) Curve {
	c := make(Curve, len(pairs))
	for i, p := range pairs {
		c[i] = Point{X: p[0], Y: p[1]}
	}
	return c
}

// At returns the interpolated value at x. Values outside the breakpoint
// range clamp to the first or last Y. An empty curve yields 0.
func (c Curve) At(x float64) float64 {
	n := len(c)
	if n == 0 {
		return 0
	}
	if x <= c[0].X {
		return c[0].Y
	}
	if x >= c[n-1].X {
		return c[n-1].Y
	}

	// first breakpoint strictly above x
	i := sort.Search(n, func(i int) bool { return c[i].X > x })

	p0, p1 := c[i-1], c[i]
	span := p1.X - p0.X
	if span == 0 {
		return p1.Y
	}
	frac := (x - p0.X) / span
	return p0.Y + (p1.Y-p0.Y)*frac
}

// Interp interpolates directly over raw [x, y] pairs.
func Interp(pairs [][2]float64, x float64) float64 {
	return FromPairs(pairs).At(x)
}

// Validate reports an empty curve or breakpoints that are not ascending.
// Repeated X values are accepted.
func (c Curve) Validate() error {
	if len(c) == 0 {
		return ErrEmpty
	}
	for i := 1; i < len(c); i++ {
		if c[i].X < c[i-1].X {
			return fmt.Errorf("%w: x[%d]=%g after x[%d]=%g", ErrNotAscending, i, c[i].X, i-1, c[i-1].X)
		}
	}
	return nil
}

// Max returns the largest Y value, or 0 for an empty curve.
func (c Curve) Max() float64 {
	if len(c) == 0 {
		return 0
	}
	m := c[0].Y
	for _, p := range c[1:] {
		if p.Y > m {
			m = p.Y
		}
	}
	return m
}
