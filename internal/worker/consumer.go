package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/queue"
)

// JobProcessor handles one decoded request. Implementations must not panic
// and must not block forever.
type JobProcessor interface {
	Process(ctx context.Context, msg domain.RequestMessage)
}

// ConsumerConfig tunes the poll loop.
type ConsumerConfig struct {
	// PollInterval is the delay between the end of one cycle and the start
	// of the next.
	PollInterval time.Duration
	BatchSize    int
	WaitTime     time.Duration
	// MaxConcurrency bounds the jobs running at once within a cycle.
	MaxConcurrency int
}

// Consumer long-polls the queue and fans each batch out to the processor.
//
// A cycle receives up to BatchSize messages, runs them concurrently and
// waits for all of them before the next cycle is scheduled. Each message is
// deleted once its job has finished, whatever the outcome. Bodies that do
// not decode are deleted without running a job.
type Consumer struct {
	transport queue.Transport
	processor JobProcessor
	cfg       ConsumerConfig
	logger    *zap.Logger
	hooks     MetricHooks
}

func NewConsumer(
	transport queue.Transport,
	processor JobProcessor,
	cfg ConsumerConfig,
	logger *zap.Logger,
	hooks MetricHooks,
) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = cfg.BatchSize
	}
	return &Consumer{
		transport: transport,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
		hooks:     hooks.withDefaults(),
	}
}

// Run polls until ctx is cancelled. The first cycle starts immediately.
// Cancellation interrupts a long poll but never an in-flight job: Run
// returns only after the current cycle's jobs and deletes have finished.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("consumer started",
		zap.Duration("poll_interval", c.cfg.PollInterval),
		zap.Int("batch_size", c.cfg.BatchSize),
		zap.Duration("wait_time", c.cfg.WaitTime),
		zap.Int("max_concurrency", c.cfg.MaxConcurrency),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping")
			return
		case <-timer.C:
			_ = c.Poll(ctx)
			timer.Reset(c.cfg.PollInterval)
		}
	}
}

// Poll runs a single cycle. A transport error ends the cycle and is returned
// after being logged; the caller is expected to simply poll again later.
func (c *Consumer) Poll(ctx context.Context) error {
	msgs, err := c.transport.Receive(ctx, c.cfg.BatchSize, c.cfg.WaitTime)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.hooks.OnPollError()
		c.logger.Error("queue receive failed", zap.Error(err))
		return fmt.Errorf("receive: %w", err)
	}
	if len(msgs) == 0 {
		return nil
	}

	c.hooks.OnReceived(len(msgs))
	c.logger.Debug("received messages", zap.Int("count", len(msgs)))

	// Jobs outlive a shutdown signal; only the long poll is cancellable.
	jobCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(c.cfg.MaxConcurrency)
	for _, m := range msgs {
		m := m
		g.Go(func() error {
			c.handle(jobCtx, m)
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (c *Consumer) handle(ctx context.Context, m queue.Message) {
	req, err := domain.DecodeRequestMessage([]byte(m.Body))
	if err != nil {
		c.hooks.OnMalformed()
		c.logger.Warn("discarding malformed message",
			zap.String("message_id", m.ID),
			zap.Error(err),
		)
	} else {
		c.processor.Process(ctx, req)
	}

	if err := c.transport.Delete(ctx, m.ReceiptHandle); err != nil {
		c.hooks.OnDeleteFailed()
		c.logger.Error("failed to delete message",
			zap.String("message_id", m.ID),
			zap.Error(err),
		)
	}
}
