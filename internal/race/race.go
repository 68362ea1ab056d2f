package race

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/qmsim/internal/config"
	"github.com/san-kum/qmsim/internal/metrics"
	"github.com/san-kum/qmsim/internal/sim"
	"github.com/san-kum/qmsim/internal/vehicle"
)

// Entry is one car on the grid. Spec is kept alongside the built car so
// results can be stored and re-tuned.
type Entry struct {
	Name string
	Spec config.CarSpec
	Car  *vehicle.Car
}

type Race struct {
	Entries []Entry
	Config  sim.Config
	Metrics func() []sim.Metric
}

func New(cfg sim.Config, entries ...Entry) *Race {
	return &Race{
		Entries: entries,
		Config:  cfg,
		Metrics: metrics.Default,
	}
}

// FromFile builds the grid described by a race file.
func FromFile(rf *config.RaceFile) (*Race, error) {
	cars, err := rf.BuildCars()
	if err != nil {
		return nil, err
	}
	entries := lo.Map(cars, func(car *vehicle.Car, i int) Entry {
		return Entry{Name: car.Name, Spec: rf.Cars[i].Clone(), Car: car}
	})
	return New(rf.SimConfig(), entries...), nil
}

func (r *Race) Run(ctx context.Context) (Standings, error) {
	if len(r.Entries) == 0 {
		return nil, fmt.Errorf("race has no entries")
	}

	cars := lo.Map(r.Entries, func(e Entry, _ int) *vehicle.Car { return e.Car })
	logrus.Debugf("race: %d cars, dt=%g, distance=%gm", len(cars), r.Config.Dt, r.Config.Distance)

	results, err := sim.RunAll(ctx, cars, r.Config, r.Metrics)
	if err != nil {
		return nil, err
	}

	standings := make(Standings, len(results))
	for i, res := range results {
		standings[i] = Standing{Entry: r.Entries[i], Result: res}
		logrus.WithFields(logrus.Fields{
			"car":    r.Entries[i].Name,
			"et":     res.Summary.ElapsedTime,
			"trap":   res.Summary.TrapSpeed,
			"shifts": res.Summary.ShiftCount,
			"steps":  res.StepsTaken,
		}).Debug("race: run complete")
	}
	standings.sort()
	return standings, nil
}

type Standing struct {
	Entry
	Result   *sim.Result
	Position int // 1-based
}

// Standings are ordered finishers first by elapsed time, then cars that
// ran out of time by distance covered. Ties keep grid order.
type Standings []Standing

func (s Standings) sort() {
	slices.SortStableFunc(s, func(a, b Standing) int {
		sa, sb := a.Result.Summary, b.Result.Summary
		switch {
		case sa.Finished && !sb.Finished:
			return -1
		case !sa.Finished && sb.Finished:
			return 1
		case sa.Finished:
			return cmp.Compare(sa.ElapsedTime, sb.ElapsedTime)
		default:
			return cmp.Compare(b.Result.Telemetry.Last().Distance, a.Result.Telemetry.Last().Distance)
		}
	})
	for i := range s {
		s[i].Position = i + 1
	}
}

// Winner is the quickest finisher. ok is false when nobody finished.
func (s Standings) Winner() (Standing, bool) {
	return lo.Find(s, func(st Standing) bool { return st.Result.Summary.Finished })
}

// Gap is the elapsed time deficit of st to the winner.
func (s Standings) Gap(st Standing) float64 {
	w, ok := s.Winner()
	if !ok {
		return 0
	}
	return st.Result.Summary.ElapsedTime - w.Result.Summary.ElapsedTime
}

// Trace is one car's telemetry, detached from the rest of its result so
// stored runs can be plotted the same way as fresh ones.
type Trace struct {
	Name      string
	Telemetry *sim.Telemetry
}

func (s Standings) Traces() []Trace {
	return lo.Map(s, func(st Standing, _ int) Trace {
		return Trace{Name: st.Name, Telemetry: &st.Result.Telemetry}
	})
}
