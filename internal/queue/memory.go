package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process Transport used for local runs and tests.
//
// It mimics the delivery semantics of a hosted queue:
//
//	Receive  hides each returned message for the visibility timeout
//	Delete   removes a message by its current receipt handle
//	expiry   an undeleted message becomes visible again and is redelivered
//	         with a fresh receipt handle (the old one stops working)
//
// Send never blocks: when capacity is reached ErrQueueFull is returned
// immediately rather than blocking the caller (the HTTP handler).
type MemoryQueue struct {
	mu         sync.Mutex
	entries    []*entry
	capacity   int
	visibility time.Duration
	now        func() time.Time

	// signal wakes one long-polling receiver after a Send.
	signal chan struct{}
}

type entry struct {
	id             string
	body           string
	receipt        string
	invisibleUntil time.Time
	receiveCount   int
}

// MemoryOption customizes a MemoryQueue.
type MemoryOption func(*MemoryQueue)

// WithClock replaces time.Now; tests use it to expire visibility timeouts.
func WithClock(now func() time.Time) MemoryOption {
	return func(q *MemoryQueue) { q.now = now }
}

// WithCapacity bounds the number of stored messages (default 10 000).
func WithCapacity(n int) MemoryOption {
	return func(q *MemoryQueue) { q.capacity = n }
}

func NewMemoryQueue(visibility time.Duration, opts ...MemoryOption) *MemoryQueue {
	q := &MemoryQueue{
		capacity:   10000,
		visibility: visibility,
		now:        time.Now,
		signal:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *MemoryQueue) Send(_ context.Context, body string) (string, error) {
	q.mu.Lock()
	if len(q.entries) >= q.capacity {
		q.mu.Unlock()
		return "", ErrQueueFull
	}
	id := uuid.New().String()
	q.entries = append(q.entries, &entry{id: id, body: body})
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return id, nil
}

// Receive returns visible messages immediately if there are any. Otherwise it
// blocks until a Send or a visibility timeout makes one available, the wait
// elapses, or ctx is cancelled.
func (q *MemoryQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	if max <= 0 {
		max = 1
	}

	var timeout <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		msgs, nextVisible := q.take(max)
		if len(msgs) > 0 {
			return msgs, nil
		}
		if timeout == nil {
			return nil, nil
		}

		// Wake when the earliest in-flight message becomes visible again.
		var expiry <-chan time.Time
		var expiryTimer *time.Timer
		if nextVisible > 0 {
			expiryTimer = time.NewTimer(nextVisible)
			expiry = expiryTimer.C
		}

		select {
		case <-q.signal:
		case <-expiry:
		case <-timeout:
			stopTimer(expiryTimer)
			return nil, nil
		case <-ctx.Done():
			stopTimer(expiryTimer)
			return nil, ctx.Err()
		}
		stopTimer(expiryTimer)
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// take claims up to max visible messages. When none are visible it also
// reports how long until the earliest in-flight message reappears (zero when
// nothing is in flight).
func (q *MemoryQueue) take(max int) ([]Message, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var msgs []Message
	var nextVisible time.Duration
	for _, e := range q.entries {
		if len(msgs) == max {
			break
		}
		if now.Before(e.invisibleUntil) {
			if d := e.invisibleUntil.Sub(now); nextVisible == 0 || d < nextVisible {
				nextVisible = d
			}
			continue
		}
		e.receipt = uuid.New().String()
		e.invisibleUntil = now.Add(q.visibility)
		e.receiveCount++
		msgs = append(msgs, Message{ID: e.id, Body: e.body, ReceiptHandle: e.receipt})
	}
	return msgs, nextVisible
}

func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.receipt != "" && e.receipt == receiptHandle {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return ErrReceiptHandleInvalid
}

// Depth reports visible and in-flight (received, not yet deleted) messages.
func (q *MemoryQueue) Depth(_ context.Context) (Depth, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var d Depth
	for _, e := range q.entries {
		if now.Before(e.invisibleUntil) {
			d.InFlight++
		} else {
			d.Visible++
		}
	}
	return d, nil
}

// ReceiveCount returns how many times the message with id was delivered.
func (q *MemoryQueue) ReceiveCount(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.id == id {
			return e.receiveCount
		}
	}
	return 0
}

var (
	_ Transport     = (*MemoryQueue)(nil)
	_ DepthReporter = (*MemoryQueue)(nil)
)
