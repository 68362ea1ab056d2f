package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/qmsim/internal/config"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/vehicle"
)

var ErrNothingToTune = errors.New("optim: no tunable parameters")

// Param is one axis of the grid. Name is any key accepted by
// config.Overrides.Set.
type Param struct {
	Name   string
	Values []float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// DefaultParams picks launch and shift rpm ranges from the car's engine.
// Direct drive cars have nothing to tune.
func DefaultParams(car *vehicle.Car) []Param {
	g, ok := car.Geared()
	if !ok {
		return nil
	}
	shiftLo := math.Max(g.IdleRPM+1000, 0.6*g.RedlineRPM)
	return []Param{
		{Name: "shift_rpm", Values: Linspace(shiftLo, g.RedlineRPM, 9)},
		{Name: "launch_rpm", Values: Linspace(g.IdleRPM, 0.7*g.RedlineRPM, 7)},
	}
}

type Trial struct {
	Params      map[string]float64
	ElapsedTime float64
	Finished    bool
	Err         error
}

type Outcome struct {
	Best     map[string]float64
	BestET   float64
	Baseline float64
	Trials   []Trial
}

// Improvement is the elapsed time saved against the untuned car.
func (o *Outcome) Improvement() float64 { return o.Baseline - o.BestET }

type GridSearch struct {
	params []Param
	cfg    sim.Config
}

func NewGridSearch(cfg sim.Config, params ...Param) *GridSearch {
	return &GridSearch{params: params, cfg: cfg}
}

// Search races every grid point against the clock and keeps the lowest
// elapsed time. Candidates the car model rejects, such as a shift point
// above the redline, are recorded and skipped. Ties go to the earlier grid
// point.
func (g *GridSearch) Search(ctx context.Context, base config.CarSpec) (*Outcome, error) {
	if len(g.params) == 0 {
		return nil, ErrNothingToTune
	}

	baseline, err := g.evaluate(ctx, base, nil)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	grid := make([]map[string]float64, 0)
	g.searchRecursive(0, make(map[string]float64), &grid)

	trials := make([]Trial, len(grid))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, point := range grid {
		eg.Go(func() error {
			res, err := g.evaluate(ctx, base, point)
			trials[i] = Trial{Params: point, Err: err}
			if err != nil {
				var cfgErr *vehicle.ConfigurationError
				if errors.As(err, &cfgErr) {
					logrus.Debugf("optim: skip %v: %v", point, err)
					return nil
				}
				return err
			}
			trials[i].ElapsedTime = res.ElapsedTime
			trials[i].Finished = res.Finished
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{BestET: math.Inf(1), Baseline: baseline.ElapsedTime, Trials: trials}
	for _, tr := range trials {
		if tr.Err != nil || !tr.Finished {
			continue
		}
		if tr.ElapsedTime < out.BestET {
			out.BestET = tr.ElapsedTime
			out.Best = tr.Params
		}
	}
	if out.Best == nil {
		return nil, fmt.Errorf("optim: no candidate finished")
	}

	logrus.Debugf("optim: %d candidates, best %v at %.3fs (baseline %.3fs)",
		len(trials), out.Best, out.BestET, out.Baseline)
	return out, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, grid *[]map[string]float64) {
	if depth == len(g.params) {
		*grid = append(*grid, current)
		return
	}

	p := g.params[depth]
	for _, val := range p.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[p.Name] = val
		g.searchRecursive(depth+1, next, grid)
	}
}

func (g *GridSearch) evaluate(ctx context.Context, base config.CarSpec, point map[string]float64) (sim.Summary, error) {
	var ov config.Overrides
	for name, v := range point {
		if !ov.Set(name, v) {
			return sim.Summary{}, fmt.Errorf("optim: unknown parameter %q", name)
		}
	}
	spec := ov.Apply(base)
	car, err := spec.ToCar("candidate")
	if err != nil {
		return sim.Summary{}, err
	}
	res, err := sim.New(car).Run(ctx, g.cfg)
	if err != nil {
		return sim.Summary{}, err
	}
	return res.Summary, nil
}

// Apply returns base with the tuned parameters set.
func Apply(base config.CarSpec, params map[string]float64) config.CarSpec {
	var ov config.Overrides
	for name, v := range params {
		ov.Set(name, v)
	}
	return ov.Apply(base)
}
