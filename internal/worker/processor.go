package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/notification"
	"github.com/ricirt/breed-query-worker/internal/provider"
)

// Dispatcher runs the query a request message names.
type Dispatcher interface {
	Dispatch(ctx context.Context, requestType domain.RequestType, parameters string) (domain.Result, error)
}

// Processor runs one decoded request end to end: dispatch the query, compose
// a notification from the result or the error, send it to the recipient.
//
// Process never returns an error and never panics. Every failure ends in a
// best-effort error notification; a failure to send that notification is
// logged and dropped.
type Processor struct {
	dispatcher Dispatcher
	composer   *notification.Composer
	sender     provider.Sender
	logger     *zap.Logger
	hooks      MetricHooks
}

func NewProcessor(
	dispatcher Dispatcher,
	composer *notification.Composer,
	sender provider.Sender,
	logger *zap.Logger,
	hooks MetricHooks,
) *Processor {
	return &Processor{
		dispatcher: dispatcher,
		composer:   composer,
		sender:     sender,
		logger:     logger,
		hooks:      hooks.withDefaults(),
	}
}

func (p *Processor) Process(ctx context.Context, msg domain.RequestMessage) {
	start := time.Now()
	log := p.logger.With(
		zap.String("request_id", msg.RequestID),
		zap.String("request_type", string(msg.RequestType)),
	)

	outcome := OutcomeSucceeded
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomePanicked
			log.Error("panic while processing request", zap.Any("panic", r), zap.Stack("stack"))
			p.notifyFailure(ctx, log, msg, fmt.Errorf("internal error: %v", r))
		}
		p.hooks.OnProcessed(metricRequestType(msg.RequestType), outcome, time.Since(start))
	}()

	result, err := p.dispatcher.Dispatch(ctx, msg.RequestType, msg.Parameters)
	if err != nil {
		outcome = classify(err)
		log.Warn("request failed", zap.String("outcome", string(outcome)), zap.Error(err))
		p.notifyFailure(ctx, log, msg, err)
		return
	}

	n, err := p.composer.Success(msg.RequestType, result, msg.RequestID)
	if err != nil {
		outcome = OutcomeComposeFailed
		log.Error("failed to compose result notification", zap.Error(err))
		p.notifyFailure(ctx, log, msg, err)
		return
	}

	id, err := p.send(ctx, msg.Recipient, n)
	if err != nil {
		outcome = OutcomeNotifyFailed
		log.Error("failed to send result notification", zap.Error(err))
		return
	}

	log.Info("request processed",
		zap.String("email_message_id", id),
		zap.Bool("empty", result.Empty()),
		zap.Duration("latency", time.Since(start)),
	)
}

// notifyFailure sends the error notification. It recovers from its own
// panics so that it is safe to call from the deferred recover in Process.
func (p *Processor) notifyFailure(ctx context.Context, log *zap.Logger, msg domain.RequestMessage, cause error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while sending error notification", zap.Any("panic", r))
		}
	}()

	n, err := p.composer.Failure(msg.RequestType, msg.RequestID, cause)
	if err != nil {
		log.Error("failed to compose error notification", zap.Error(err))
		return
	}
	if _, err := p.send(ctx, msg.Recipient, n); err != nil {
		log.Warn("failed to send error notification", zap.Error(err))
	}
}

func (p *Processor) send(ctx context.Context, to string, n notification.Notification) (string, error) {
	id, err := p.sender.Send(ctx, provider.Email{
		To:      to,
		Subject: n.Subject,
		HTML:    n.HTML,
		Text:    n.Text,
	})
	p.hooks.OnNotification(n.Kind, err)
	return id, err
}

func classify(err error) Outcome {
	if errors.Is(err, domain.ErrClassification) {
		return OutcomeClassification
	}
	return OutcomeQueryFailed
}
