package report

import (
	"fmt"
	"io"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"

	"github.com/san-kum/qmsim/internal/curve"
	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/vehicle"
)

// HPDivisor turns N·m × rpm into horsepower.
const HPDivisor = 7745.0

const (
	plotWidth  = 80
	plotHeight = 12
	powerSteps = 150
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.DodgerBlue,
	asciigraph.Orange,
	asciigraph.LimeGreen,
	asciigraph.HotPink,
	asciigraph.Gold,
	asciigraph.MediumPurple,
}

func plotMany(w io.Writer, series [][]float64, names []string, caption string) {
	if len(series) == 0 {
		return
	}
	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range series {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(w, graph)
	fmt.Fprintln(w)
}

func names(traces []race.Trace) []string {
	return lo.Map(traces, func(tr race.Trace, _ int) string { return tr.Name })
}

// OverTime resamples a telemetry column on a shared time grid. Points past
// a car's finish are NaN so the line simply stops.
func OverTime(traces []race.Trace, n int, col func(*sim.Telemetry) []float64) [][]float64 {
	tMax := 0.0
	for _, tr := range traces {
		tMax = math.Max(tMax, tr.Telemetry.Last().Time)
	}

	out := make([][]float64, len(traces))
	for i, tr := range traces {
		pairs := zip(tr.Telemetry.Times(), col(tr.Telemetry))
		end := tr.Telemetry.Last().Time
		out[i] = make([]float64, n)
		for j := range out[i] {
			t := tMax * float64(j) / float64(max(n-1, 1))
			if t > end || len(pairs) == 0 {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = curve.Interp(pairs, t)
		}
	}
	return out
}

// OverSpeed bins a column by speed on a shared grid up to the highest trap
// speed. Speed is not monotonic through a shift window, so each bin holds
// the mean of the samples that fall in it; empty bins are NaN.
func OverSpeed(traces []race.Trace, n int, col func(*sim.Telemetry) []float64) [][]float64 {
	vMax := 0.0
	for _, tr := range traces {
		vMax = math.Max(vMax, lo.Max(tr.Telemetry.Speeds()))
	}

	out := make([][]float64, len(traces))
	for i, tr := range traces {
		sums := make([]float64, n)
		counts := make([]int, n)
		speeds, vals := tr.Telemetry.Speeds(), col(tr.Telemetry)
		for k, v := range speeds {
			if k == 0 || vMax == 0 {
				continue
			}
			b := min(int(v/vMax*float64(n)), n-1)
			sums[b] += vals[k]
			counts[b]++
		}
		out[i] = make([]float64, n)
		for b := range out[i] {
			if counts[b] == 0 {
				out[i][b] = math.NaN()
				continue
			}
			out[i][b] = sums[b] / float64(counts[b])
		}
	}
	return out
}

func zip(xs, ys []float64) [][2]float64 {
	pairs := make([][2]float64, len(xs))
	for i := range xs {
		pairs[i] = [2]float64{xs[i], ys[i]}
	}
	return pairs
}

func kph(t *sim.Telemetry) []float64 {
	return lo.Map(t.Speeds(), func(v float64, _ int) float64 { return KPH(v) })
}

// DistanceSpeed plots distance and speed against time.
func DistanceSpeed(w io.Writer, traces []race.Trace) {
	tMax := lo.Max(lo.Map(traces, func(tr race.Trace, _ int) float64 { return tr.Telemetry.Last().Time }))
	plotMany(w, OverTime(traces, plotWidth, (*sim.Telemetry).Distances), names(traces),
		fmt.Sprintf("distance (m) vs time, 0 to %.1f s", tMax))
	plotMany(w, OverTime(traces, plotWidth, kph), names(traces),
		fmt.Sprintf("speed (km/h) vs time, 0 to %.1f s", tMax))
}

// AccelTorque plots acceleration and wheel torque against speed.
func AccelTorque(w io.Writer, traces []race.Trace) {
	vMax := lo.Max(lo.Map(traces, func(tr race.Trace, _ int) float64 { return lo.Max(tr.Telemetry.Speeds()) }))
	plotMany(w, OverSpeed(traces, plotWidth, (*sim.Telemetry).Accels), names(traces),
		fmt.Sprintf("acceleration (m/s²) vs speed, 0 to %.0f km/h", KPH(vMax)))
	plotMany(w, OverSpeed(traces, plotWidth, (*sim.Telemetry).WheelTorques), names(traces),
		fmt.Sprintf("wheel torque (N·m) vs speed, 0 to %.0f km/h", KPH(vMax)))
}

// PowerCurve samples hp = torque × rpm / 7745 from zero to the redline or
// motor limit in evenly spaced steps.
func PowerCurve(car *vehicle.Car, steps int) (rpm, hp []float64) {
	top := car.Powertrain.MaxRPM()
	rpm = make([]float64, steps)
	hp = make([]float64, steps)
	for i := range rpm {
		rpm[i] = top * float64(i) / float64(max(steps-1, 1))
		hp[i] = car.Powertrain.Torque(rpm[i]) * rpm[i] / HPDivisor
	}
	return rpm, hp
}

// Power plots every car's power curve on a shared rpm axis.
func Power(w io.Writer, cars []*vehicle.Car) {
	if len(cars) == 0 {
		return
	}
	top := lo.Max(lo.Map(cars, func(c *vehicle.Car, _ int) float64 { return c.Powertrain.MaxRPM() }))

	series := make([][]float64, len(cars))
	for i, car := range cars {
		rpm, hp := PowerCurve(car, powerSteps)
		pairs := zip(rpm, hp)
		series[i] = make([]float64, plotWidth)
		for j := range series[i] {
			r := top * float64(j) / float64(plotWidth-1)
			if r > car.Powertrain.MaxRPM() {
				series[i][j] = math.NaN()
				continue
			}
			series[i][j] = curve.Interp(pairs, r)
		}
	}

	plotMany(w, series, lo.Map(cars, func(c *vehicle.Car, _ int) string { return c.Name }),
		fmt.Sprintf("power (hp) vs rpm, 0 to %.0f rpm", top))

	t := newTable(w)
	t.AppendHeader([]any{"Car", "Peak power", "At rpm", "Peak torque"})
	for _, car := range cars {
		rpm, hp := PowerCurve(car, powerSteps)
		k := lo.IndexOf(hp, lo.Max(hp))
		t.AppendRow([]any{
			car.Name,
			fmt.Sprintf("%.0f hp", hp[k]),
			fmt.Sprintf("%.0f", rpm[k]),
			fmt.Sprintf("%.0f N·m", peakTorque(car)),
		})
	}
	t.Render()
}

func peakTorque(car *vehicle.Car) float64 {
	switch p := car.Powertrain.(type) {
	case *vehicle.Geared:
		return p.TorqueCurve.Max()
	case *vehicle.DirectDrive:
		return p.TorqueCurve.Max()
	}
	return 0
}

// All prints the standard set of race plots.
func All(w io.Writer, traces []race.Trace) {
	DistanceSpeed(w, traces)
	AccelTorque(w, traces)
}
