package simulation

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"sigsim/internal/distribution"
)

// executeParallel partitions the trial indices into contiguous ranges, one per
// worker. Each worker owns cloned generators and a PCG stream seeded from the
// engine stream in worker order, so a (seed, workers) pair always produces the
// same results. Results are written at their trial index only.
func (e *Engine) executeParallel(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	chunk := (e.iterations + e.workers - 1) / e.workers
	for w := 0; w < e.workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, e.iterations)
		if lo >= hi {
			break
		}

		src := rand.NewPCG(e.src.Uint64(), e.src.Uint64())
		r := e.newRunner(e.x.Clone(), cloneGenerator(e.y), src)
		g.Go(func() error {
			return e.executeRange(ctx, r, lo, hi)
		})
	}
	return g.Wait()
}

func cloneGenerator(g *distribution.Generator) *distribution.Generator {
	if g == nil {
		return nil
	}
	return g.Clone()
}
