package worker

import (
	"context"
	"sync"
)

// Runner is a long-lived background loop that returns once ctx is cancelled.
type Runner interface {
	Run(ctx context.Context)
}

// Pool manages the lifecycle of the background loops: the queue consumer
// and any samplers started alongside it.
type Pool struct {
	runners []Runner
	wg      sync.WaitGroup
}

func NewPool(runners ...Runner) *Pool {
	return &Pool{runners: runners}
}

// Start launches every runner as a goroutine.
// The provided ctx is forwarded to each; cancelling it triggers a graceful
// shutdown of the whole pool.
func (p *Pool) Start(ctx context.Context) {
	for _, r := range p.runners {
		p.wg.Add(1)
		go func(r Runner) {
			defer p.wg.Done()
			r.Run(ctx)
		}(r)
	}
}

// Wait blocks until every runner has returned after ctx is cancelled.
// Call this after cancelling the context so in-flight jobs finish and their
// messages are deleted.
func (p *Pool) Wait() {
	p.wg.Wait()
}
