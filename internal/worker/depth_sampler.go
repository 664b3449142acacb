package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/breed-query-worker/internal/queue"
)

// DepthSampler polls the queue's approximate depth on a fixed interval and
// reports it through MetricHooks.OnDepth.
type DepthSampler struct {
	reporter queue.DepthReporter
	interval time.Duration
	logger   *zap.Logger
	onDepth  func(queue.Depth)
}

func NewDepthSampler(
	reporter queue.DepthReporter,
	interval time.Duration,
	logger *zap.Logger,
	hooks MetricHooks,
) *DepthSampler {
	return &DepthSampler{
		reporter: reporter,
		interval: interval,
		logger:   logger,
		onDepth:  hooks.withDefaults().OnDepth,
	}
}

// Run ticks every interval and samples the queue depth.
// Stops cleanly when ctx is cancelled.
func (ds *DepthSampler) Run(ctx context.Context) {
	ticker := time.NewTicker(ds.interval)
	defer ticker.Stop()

	ds.logger.Info("depth sampler started", zap.Duration("interval", ds.interval))

	for {
		select {
		case <-ctx.Done():
			ds.logger.Info("depth sampler stopping")
			return
		case <-ticker.C:
			ds.Sample(ctx)
		}
	}
}

func (ds *DepthSampler) Sample(ctx context.Context) {
	d, err := ds.reporter.Depth(ctx)
	if err != nil {
		ds.logger.Warn("queue depth poll error", zap.Error(err))
		return
	}
	ds.onDepth(d)
}
