// Package batch runs many independent studies concurrently. Each study is a
// self-contained estimation (spec, data, options); failures are captured per
// item so one bad study never sinks the rest of the batch.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"synergy/internal/fit"
	"synergy/internal/logging"
	"synergy/internal/study"
	"synergy/pkg/estimate"
)

// Item is one study's outcome: the loaded configuration plus either a result
// or the error that stopped it.
type Item struct {
	Path   string
	Study  *study.Study
	Result *estimate.Result
	Err    error
}

// Run estimates every study file with up to workers in flight. The returned
// slice preserves input order. Context cancellation stops scheduling; items
// not started carry the context error.
func Run(ctx context.Context, paths []string, workers int) []Item {
	if workers <= 0 {
		workers = 1
	}
	logger := logging.New("batch")

	items := make([]Item, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		items[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Study, items[i].Result, items[i].Err = runOne(path)
			if items[i].Err != nil {
				logger.Warn("study failed", "path", path, "error", items[i].Err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func runOne(path string) (*study.Study, *estimate.Result, error) {
	s, err := study.LoadFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.LoadData()
	if err != nil {
		return s, nil, err
	}
	fitter := &fit.Logit{}
	m, err := fitter.Fit(s.Spec(), data)
	if err != nil {
		return s, nil, fmt.Errorf("fit %s: %w", path, err)
	}
	res, err := estimate.Run(m, s.Options(fitter))
	if err != nil {
		return s, nil, err
	}
	return s, res, nil
}
