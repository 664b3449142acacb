package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ricirt/breed-query-worker/internal/queue"
)

// fakeClock is advanced by hand so visibility timeouts expire on demand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryQueue_SendReceiveDelete(t *testing.T) {
	q := queue.NewMemoryQueue(30 * time.Second)
	ctx := context.Background()

	id, err := q.Send(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}

	msgs, err := q.Receive(ctx, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Body != "hello" || msgs[0].ID != id {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	if err := q.Delete(ctx, msgs[0].ReceiptHandle); err != nil {
		t.Fatalf("delete: %v", err)
	}
	d, _ := q.Depth(ctx)
	if d.Visible+d.InFlight != 0 {
		t.Fatalf("expected empty queue, got %+v", d)
	}
}

func TestMemoryQueue_ReceiveRespectsMax(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, _ = q.Send(ctx, "m")
	}

	first, _ := q.Receive(ctx, 10, 0)
	second, _ := q.Receive(ctx, 10, 0)
	if len(first) != 10 || len(second) != 5 {
		t.Fatalf("expected 10 then 5, got %d then %d", len(first), len(second))
	}
}

// TestMemoryQueue_InFlightHiddenUntilVisibilityExpires verifies that an
// undeleted message is redelivered, with a new receipt, only after expiry.
func TestMemoryQueue_InFlightHiddenUntilVisibilityExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	q := queue.NewMemoryQueue(30*time.Second, queue.WithClock(clock.Now))
	ctx := context.Background()

	id, _ := q.Send(ctx, "work")
	first, _ := q.Receive(ctx, 1, 0)
	if len(first) != 1 {
		t.Fatal("expected first delivery")
	}

	if again, _ := q.Receive(ctx, 1, 0); len(again) != 0 {
		t.Fatal("message must stay hidden while in flight")
	}

	clock.Advance(31 * time.Second)
	second, _ := q.Receive(ctx, 1, 0)
	if len(second) != 1 || second[0].ID != id {
		t.Fatalf("expected redelivery of %s, got %+v", id, second)
	}
	if second[0].ReceiptHandle == first[0].ReceiptHandle {
		t.Fatal("expected a fresh receipt handle on redelivery")
	}
	if n := q.ReceiveCount(id); n != 2 {
		t.Fatalf("expected receive count 2, got %d", n)
	}

	if err := q.Delete(ctx, first[0].ReceiptHandle); !errors.Is(err, queue.ErrReceiptHandleInvalid) {
		t.Fatalf("expected stale receipt to be rejected, got %v", err)
	}
	if err := q.Delete(ctx, second[0].ReceiptHandle); err != nil {
		t.Fatalf("delete with current receipt: %v", err)
	}
}

func TestMemoryQueue_LongPollWakesOnSend(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	ctx := context.Background()

	done := make(chan []queue.Message, 1)
	go func() {
		msgs, _ := q.Receive(ctx, 10, 5*time.Second)
		done <- msgs
	}()

	time.Sleep(20 * time.Millisecond)
	_, _ = q.Send(ctx, "late")

	select {
	case msgs := <-done:
		if len(msgs) != 1 || msgs[0].Body != "late" {
			t.Fatalf("unexpected messages: %+v", msgs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("long poll did not wake on send")
	}
}

func TestMemoryQueue_LongPollWakesOnVisibilityExpiry(t *testing.T) {
	q := queue.NewMemoryQueue(50 * time.Millisecond)
	ctx := context.Background()

	if _, err := q.Send(ctx, "retry-me"); err != nil {
		t.Fatalf("send: %v", err)
	}
	first, err := q.Receive(ctx, 1, 0)
	if err != nil || len(first) != 1 {
		t.Fatalf("first receive: %v %v", first, err)
	}

	start := time.Now()
	again, err := q.Receive(ctx, 1, 5*time.Second)
	if err != nil {
		t.Fatalf("second receive: %v", err)
	}
	if len(again) != 1 || again[0].ID != first[0].ID {
		t.Fatalf("expected redelivery of %s, got %+v", first[0].ID, again)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("long poll waited %s; expected wake on visibility expiry", elapsed)
	}
}

func TestMemoryQueue_LongPollTimesOutEmpty(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)

	start := time.Now()
	msgs, err := q.Receive(context.Background(), 10, 50*time.Millisecond)
	if err != nil || len(msgs) != 0 {
		t.Fatalf("expected empty result, got %v %v", msgs, err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatal("expected receive to wait for the poll duration")
	}
}

// TestMemoryQueue_ContextCancellation verifies Receive returns ctx.Err()
// when the context is cancelled while blocking.
func TestMemoryQueue_ContextCancellation(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Receive(ctx, 1, time.Minute)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not return after context cancellation")
	}
}

func TestMemoryQueue_Full(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute, queue.WithCapacity(2))
	ctx := context.Background()
	_, _ = q.Send(ctx, "1")
	_, _ = q.Send(ctx, "2")
	if _, err := q.Send(ctx, "3"); !errors.Is(err, queue.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}
