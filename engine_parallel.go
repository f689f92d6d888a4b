package codeindex

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// processParallel runs the per-file phase on a worker pool. Each file's
// read, lex, and discovery share no mutable state, so they parallelise
// freely; results land in a slice indexed by the file's sorted position,
// and assembly walks that slice in order. Scheduling therefore cannot
// influence output bytes.
func (e *Engine) processParallel(ctx context.Context, inputs []Input) ([]fileResult, error) {
	results := make([]fileResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.NumCPU(), len(inputs)))

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.processFile(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
