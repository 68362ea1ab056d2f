package report

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qmsim/internal/config"
	"github.com/san-kum/qmsim/internal/race"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/storage"
)

func runRace(t *testing.T, limit float64, names ...string) race.Standings {
	t.Helper()
	rf, err := race.Resolve(names, config.Overrides{})
	require.NoError(t, err)
	if limit > 0 {
		rf.TimeLimit = limit
	}
	r, err := race.FromFile(rf)
	require.NoError(t, err)
	standings, err := r.Run(context.Background())
	require.NoError(t, err)
	return standings
}

func TestSummary(t *testing.T) {
	standings := runRace(t, 0, "gt_coupe", "ev_sedan")

	var buf bytes.Buffer
	Summary(&buf, standings)
	out := buf.String()

	assert.Contains(t, out, "GT Coupe")
	assert.Contains(t, out, "EV Sedan")
	assert.Contains(t, out, "manual 6spd")
	assert.Contains(t, out, "quarter mile")
	assert.Contains(t, out, standings[0].Name)
	assert.NotContains(t, out, "DNF")
}

func TestSummaryNoFinisher(t *testing.T) {
	standings := runRace(t, 3, "ev_hatch")

	var buf bytes.Buffer
	Summary(&buf, standings)
	assert.Contains(t, buf.String(), "DNF")
	assert.Contains(t, buf.String(), "no car finished")
}

func TestMetricsTable(t *testing.T) {
	standings := runRace(t, 0, "ev_hatch")

	var buf bytes.Buffer
	Metrics(&buf, standings)
	assert.Contains(t, buf.String(), "60 ft")
	assert.Contains(t, buf.String(), "EV Hatch")
}

func TestPowerCurve(t *testing.T) {
	cars, err := (&config.RaceFile{Cars: []config.CarSpec{*config.GetPreset("ev_hatch")}}).BuildCars()
	require.NoError(t, err)

	rpm, hp := PowerCurve(cars[0], 150)
	require.Len(t, rpm, 150)
	assert.Zero(t, rpm[0])
	assert.Zero(t, hp[0])
	assert.Equal(t, 16000.0, rpm[149])
	// constant torque region: power grows linearly
	assert.InDelta(t, 310*rpm[10]/HPDivisor, hp[10], 1e-9)

	var buf bytes.Buffer
	Power(&buf, cars)
	assert.Contains(t, buf.String(), "power (hp) vs rpm")
	assert.Contains(t, buf.String(), "310 N·m")
}

func TestOverTimeStopsAtFinish(t *testing.T) {
	short := &sim.Telemetry{Samples: []sim.Sample{{Time: 0}, {Time: 1, Distance: 1}}}
	long := &sim.Telemetry{Samples: []sim.Sample{{Time: 0}, {Time: 2, Distance: 4}}}
	traces := []race.Trace{{Name: "short", Telemetry: short}, {Name: "long", Telemetry: long}}

	grid := OverTime(traces, 5, (*sim.Telemetry).Distances)
	require.Len(t, grid, 2)
	assert.InDelta(t, 0.5, grid[0][1], 1e-9)
	assert.InDelta(t, 1.0, grid[0][2], 1e-9)
	assert.True(t, math.IsNaN(grid[0][3]))
	assert.InDelta(t, 4.0, grid[1][4], 1e-9)
}

func TestOverSpeedBins(t *testing.T) {
	tel := &sim.Telemetry{Samples: []sim.Sample{
		{Speed: 0, Accel: 99},
		{Speed: 1, Accel: 4},
		{Speed: 1.2, Accel: 2},
		{Speed: 10, Accel: 1},
	}}
	grid := OverSpeed([]race.Trace{{Name: "a", Telemetry: tel}}, 10, (*sim.Telemetry).Accels)
	assert.InDelta(t, 3.0, grid[0][1], 1e-9)
	assert.InDelta(t, 1.0, grid[0][9], 1e-9)
	assert.True(t, math.IsNaN(grid[0][0]), "rest sample is skipped")
}

func TestPlots(t *testing.T) {
	standings := runRace(t, 0, "hot_hatch", "ev_hatch")

	var buf bytes.Buffer
	All(&buf, standings.Traces())
	out := buf.String()
	assert.Contains(t, out, "distance (m) vs time")
	assert.Contains(t, out, "speed (km/h) vs time")
	assert.Contains(t, out, "acceleration (m/s²) vs speed")
	assert.Contains(t, out, "wheel torque (N·m) vs speed")
}

func TestRuns(t *testing.T) {
	var buf bytes.Buffer
	Runs(&buf, nil)
	assert.Contains(t, buf.String(), "no runs found")

	st := storage.New(t.TempDir())
	standings := runRace(t, 0, "ev_hatch")
	id, err := st.Save(standings[0].Result.Config, standings)
	require.NoError(t, err)
	runs, err := st.List()
	require.NoError(t, err)

	buf.Reset()
	Runs(&buf, runs)
	assert.Contains(t, buf.String(), id)

	meta, err := st.Load(id)
	require.NoError(t, err)
	buf.Reset()
	StoredSummary(&buf, meta)
	assert.Contains(t, buf.String(), "EV Hatch")
}
