package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qmsim/internal/config"
	"github.com/san-kum/qmsim/internal/sim"
)

func preset(t *testing.T, name string) config.CarSpec {
	t.Helper()
	s := config.GetPreset(name)
	require.NotNil(t, s)
	return *s
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, Linspace(1, 3, 3))
	assert.Equal(t, []float64{5}, Linspace(5, 9, 1))
}

func TestSearchFindsFastestTrial(t *testing.T) {
	spec := preset(t, "gt_coupe")
	car, err := spec.ToCar("")
	require.NoError(t, err)

	params := DefaultParams(car)
	require.Len(t, params, 2)

	out, err := NewGridSearch(sim.DefaultConfig(), params...).Search(context.Background(), spec)
	require.NoError(t, err)

	assert.Len(t, out.Trials, 9*7)
	assert.Contains(t, out.Best, "shift_rpm")
	assert.Contains(t, out.Best, "launch_rpm")
	assert.Less(t, out.BestET, 60.0)

	for _, tr := range out.Trials {
		if tr.Err == nil && tr.Finished {
			assert.GreaterOrEqual(t, tr.ElapsedTime, out.BestET)
		}
	}

	tuned, err := Apply(spec, out.Best).ToCar("")
	require.NoError(t, err)
	res, err := sim.New(tuned).Run(context.Background(), sim.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, out.BestET, res.Summary.ElapsedTime)
}

func TestSearchSkipsInvalidCandidates(t *testing.T) {
	spec := preset(t, "gt_coupe")
	gs := NewGridSearch(sim.DefaultConfig(), Param{Name: "shift_rpm", Values: []float64{6000, 99999}})

	out, err := gs.Search(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, out.Trials, 2)
	assert.NoError(t, out.Trials[0].Err)
	assert.Error(t, out.Trials[1].Err)
	assert.Equal(t, 6000.0, out.Best["shift_rpm"])
}

func TestSearchUnknownParam(t *testing.T) {
	gs := NewGridSearch(sim.DefaultConfig(), Param{Name: "boost", Values: []float64{1}})
	_, err := gs.Search(context.Background(), preset(t, "gt_coupe"))
	assert.ErrorContains(t, err, "boost")
}

func TestDirectDriveHasNothingToTune(t *testing.T) {
	spec := preset(t, "ev_sedan")
	car, err := spec.ToCar("")
	require.NoError(t, err)
	assert.Empty(t, DefaultParams(car))

	_, err = NewGridSearch(sim.DefaultConfig()).Search(context.Background(), spec)
	assert.ErrorIs(t, err, ErrNothingToTune)
}

func TestSearchDoesNotMutateBase(t *testing.T) {
	spec := preset(t, "hot_hatch")
	before := *spec.Powertrain.Gearbox.ShiftRPM

	_, err := NewGridSearch(sim.DefaultConfig(), Param{Name: "shift_rpm", Values: []float64{5000, 6000}}).
		Search(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, before, *spec.Powertrain.Gearbox.ShiftRPM)
}
