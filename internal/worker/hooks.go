package worker

import (
	"time"

	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/notification"
	"github.com/ricirt/breed-query-worker/internal/queue"
)

// Outcome is the terminal state of one processed request.
type Outcome string

const (
	OutcomeSucceeded      Outcome = "succeeded"
	OutcomeClassification Outcome = "classification_error"
	OutcomeQueryFailed    Outcome = "query_error"
	OutcomeComposeFailed  Outcome = "compose_error"
	OutcomeNotifyFailed   Outcome = "notify_error"
	OutcomePanicked       Outcome = "panic"
)

// UnknownRequestType is the request_type reported for messages whose type
// does not resolve to a supported query.
const UnknownRequestType domain.RequestType = "unknown"

// metricRequestType maps t to its canonical name, or UnknownRequestType.
// Label values stay within the supported types whatever the queue carries.
func metricRequestType(t domain.RequestType) domain.RequestType {
	if canonical, ok := domain.ParseRequestType(string(t)); ok {
		return canonical
	}
	return UnknownRequestType
}

// MetricHooks carries the metric callback functions injected by main.
// Any nil field is a no-op, so the worker stays metrics-agnostic.
type MetricHooks struct {
	OnReceived     func(n int)
	OnMalformed    func()
	OnProcessed    func(requestType domain.RequestType, outcome Outcome, latency time.Duration)
	OnNotification func(kind notification.Kind, err error)
	OnDeleteFailed func()
	OnPollError    func()
	OnDepth        func(queue.Depth)
}

func (h MetricHooks) withDefaults() MetricHooks {
	if h.OnReceived == nil {
		h.OnReceived = func(int) {}
	}
	if h.OnMalformed == nil {
		h.OnMalformed = func() {}
	}
	if h.OnProcessed == nil {
		h.OnProcessed = func(domain.RequestType, Outcome, time.Duration) {}
	}
	if h.OnNotification == nil {
		h.OnNotification = func(notification.Kind, error) {}
	}
	if h.OnDeleteFailed == nil {
		h.OnDeleteFailed = func() {}
	}
	if h.OnPollError == nil {
		h.OnPollError = func() {}
	}
	if h.OnDepth == nil {
		h.OnDepth = func(queue.Depth) {}
	}
	return h
}
