package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/viz"
)

const (
	margin    = 50.0
	maxPoints = 600
)

type Point struct{ X, Y float64 }

type Series struct {
	Name   string
	Color  string
	Points []Point
}

// Chart is a multi-series line chart. RefY, when set, draws a dashed
// horizontal reference line (the finish distance, for instance).
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	Series []Series
	RefY   *float64
	RefTag string
}

func (c *Chart) bounds() (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if c.RefY != nil {
		minY, maxY = math.Min(minY, *c.RefY), math.Max(maxY, *c.RefY)
	}
	if maxX <= minX {
		maxX = minX + 1
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	// head room above the highest line
	maxY += (maxY - minY) * 0.05
	return
}

// SVG renders the chart. Charts without any points render as "".
func (c *Chart) SVG() string {
	n := 0
	for _, s := range c.Series {
		n += len(s.Points)
	}
	if n < 2 {
		return ""
	}

	w, h := float64(c.Width), float64(c.Height)
	minX, maxX, minY, maxY := c.bounds()
	px := func(x float64) float64 { return margin + (x-minX)/(maxX-minX)*(w-2*margin) }
	py := func(y float64) float64 { return h - margin - (y-minY)/(maxY-minY)*(h-2*margin) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="12">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, c.Width, c.Height, c.Width, c.Height)

	fmt.Fprintf(&sb, `<text x="%.1f" y="20" fill="#ffffff" text-anchor="middle" font-size="14">%s</text>
`, w/2, html.EscapeString(c.Title))

	// axes
	fmt.Fprintf(&sb, `<g stroke="#444466" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
`, margin, h-margin, w-margin, h-margin, margin, margin, margin, h-margin)

	for i := 0; i <= 4; i++ {
		x := minX + (maxX-minX)*float64(i)/4
		y := minY + (maxY-minY)*float64(i)/4
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#888899" text-anchor="middle">%.4g</text>
`, px(x), h-margin+16, x)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#888899" text-anchor="end">%.4g</text>
`, margin-6, py(y)+4, y)
	}
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#888899" text-anchor="middle">%s</text>
`, w/2, h-10, html.EscapeString(c.XLabel))
	fmt.Fprintf(&sb, `<text x="14" y="%.1f" fill="#888899" text-anchor="middle" transform="rotate(-90 14 %.1f)">%s</text>
`, h/2, h/2, html.EscapeString(c.YLabel))

	if c.RefY != nil {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ffffff" stroke-opacity="0.7" stroke-dasharray="6 4"/>
<text x="%.1f" y="%.1f" fill="#ffffff" text-anchor="end">%s</text>
`, margin, py(*c.RefY), w-margin, py(*c.RefY), w-margin, py(*c.RefY)-4, html.EscapeString(c.RefTag))
	}

	for i, s := range c.Series {
		if len(s.Points) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color)
		for j, p := range decimate(s.Points, maxPoints) {
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", px(p.X), py(p.Y))
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", px(p.X), py(p.Y))
			}
		}
		sb.WriteString(`"/>
`)
		ly := margin + 16*float64(i)
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="10" height="3" fill="%s"/>
<text x="%.1f" y="%.1f" fill="%s">%s</text>
`, margin+10, ly-4, s.Color, margin+26, ly, s.Color, html.EscapeString(s.Name))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// decimate keeps at most n points, always including the last one.
func decimate(pts []Point, n int) []Point {
	if len(pts) <= n {
		return pts
	}
	step := int(math.Ceil(float64(len(pts)) / float64(n)))
	out := make([]Point, 0, n+1)
	for i := 0; i < len(pts); i += step {
		out = append(out, pts[i])
	}
	if last := pts[len(pts)-1]; out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

func traceSeries(traces []race.Trace, y func(float64, float64) float64) []Series {
	series := make([]Series, len(traces))
	for i, tr := range traces {
		pts := make([]Point, len(tr.Telemetry.Samples))
		for j, s := range tr.Telemetry.Samples {
			pts[j] = Point{X: s.Time, Y: y(s.Distance, s.Speed)}
		}
		series[i] = Series{
			Name:   tr.Name,
			Color:  string(viz.CurrentTheme.Lane(i)),
			Points: pts,
		}
	}
	return series
}

// SpeedTraceSVG charts speed (km/h) over time for every car.
func SpeedTraceSVG(traces []race.Trace, width, height int) string {
	c := Chart{
		Title:  "Speed vs Time",
		XLabel: "time (s)",
		YLabel: "speed (km/h)",
		Width:  width,
		Height: height,
		Series: traceSeries(traces, func(_, v float64) float64 { return v * 3.6 }),
	}
	return c.SVG()
}

// DistanceTraceSVG charts distance over time with the finish line marked.
func DistanceTraceSVG(traces []race.Trace, finish float64, width, height int) string {
	c := Chart{
		Title:  "Distance vs Time",
		XLabel: "time (s)",
		YLabel: "distance (m)",
		Width:  width,
		Height: height,
		Series: traceSeries(traces, func(x, _ float64) float64 { return x }),
		RefY:   &finish,
		RefTag: "finish",
	}
	return c.SVG()
}
