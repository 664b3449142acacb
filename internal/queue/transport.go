package queue

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQueueFull            = errors.New("queue is at capacity")
	ErrReceiptHandleInvalid = errors.New("receipt handle is invalid or expired")
)

// Message is one received delivery. Body is the encoded RequestMessage;
// ReceiptHandle is the only transport metadata the worker needs, to delete
// the message once processing finishes.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Transport is a durable work queue with visibility-timeout semantics:
// a received message is hidden from other receivers until it is deleted or
// its visibility timeout expires, after which it is delivered again.
// Implementations must be safe for concurrent use.
type Transport interface {
	// Receive returns up to max messages, waiting up to wait for at least one.
	Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error)
	// Delete acknowledges a message so it is never redelivered.
	Delete(ctx context.Context, receiptHandle string) error
	// Send enqueues body and returns the transport's message id.
	Send(ctx context.Context, body string) (string, error)
}

// Depth is a point-in-time snapshot of the queue.
type Depth struct {
	Visible  int `json:"visible"`
	InFlight int `json:"in_flight"`
}

// DepthReporter is implemented by transports that can report their depth.
type DepthReporter interface {
	Depth(ctx context.Context) (Depth, error)
}
