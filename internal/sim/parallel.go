package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/qmsim/internal/vehicle"
)

// RunAll simulates every car independently and returns results in input
// order. newMetrics, if set, supplies a fresh metric set per run since
// metrics are stateful. The first failing run cancels the rest.
func RunAll(ctx context.Context, cars []*vehicle.Car, cfg Config, newMetrics func() []Metric) ([]*Result, error) {
	results := make([]*Result, len(cars))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, car := range cars {
		g.Go(func() error {
			s := New(car)
			if newMetrics != nil {
				for _, m := range newMetrics() {
					s.AddMetric(m)
				}
			}
			r, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
