package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when Batch is given a non-positive worker count.
const DefaultWorkers = 4

// Batch checks artifacts in parallel with at most workers sessions in
// flight. Results are in input order. Once ctx is done no new session is
// scheduled; sessions already running complete, and the slots of
// unscheduled artifacts stay nil.
func (e *Engine) Batch(ctx context.Context, artifacts []Artifact, workers int) ([]*Session, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	sessions := make([]*Session, len(artifacts))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, a := range artifacts {
		if ctx.Err() != nil {
			break
		}
		i, a := i, a
		g.Go(func() error {
			sessions[i] = e.Check(ctx, a)
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Debug("batch complete", "artifacts", len(artifacts), "workers", workers)
	return sessions, ctx.Err()
}
