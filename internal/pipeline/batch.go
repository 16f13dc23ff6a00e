package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/refsplit/internal/config"
)

// BatchItem is the outcome of one input of a batch.
type BatchItem struct {
	Input  Input
	Result Result
	Err    error
}

// RunBatch runs every input with at most jobs runs in flight. Items are
// returned in input order; a failed input does not stop the others.
func (r *Runner) RunBatch(ctx context.Context, inputs []Input, jobs int) []BatchItem {
	if jobs < 1 {
		jobs = 1
	}
	items := make([]BatchItem, len(inputs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, in := range inputs {
		items[i].Input = in
		eg.Go(func() error {
			res, err := r.Run(egCtx, in)
			items[i].Result, items[i].Err = res, err
			if err != nil {
				r.log.Warn("batch input failed", zap.String("source", in.Source), zap.Error(err))
			}
			return nil
		})
	}
	_ = eg.Wait()
	return items
}

// RunBatch is Run over several inputs sharing one debug store.
func RunBatch(ctx context.Context, inputs []Input, cfg config.Style, log *zap.Logger, jobs int) ([]BatchItem, error) {
	r, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	defer r.attachStore(cfg.DebugDir)()
	return r.RunBatch(ctx, inputs, jobs), nil
}
