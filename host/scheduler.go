package host

import (
	"context"
	"sync"
	"time"
)

// Scheduler is the host's cooperative frame loop. Each Step advances one
// frame: registered frame callbacks run, then every goroutine suspended in
// AwaitTicks is woken for that boundary.
type Scheduler struct {
	mu      sync.Mutex
	frame   uint64
	waiters []chan struct{}
	onStep  []func()
}

// NewScheduler creates a stopped scheduler; frames advance only via Step or
// Run.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// OnStep registers a callback invoked on every frame, before waiters wake.
func (s *Scheduler) OnStep(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStep = append(s.onStep, fn)
}

// Frame returns the number of frames advanced so far.
func (s *Scheduler) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Step advances exactly one frame.
func (s *Scheduler) Step() {
	s.mu.Lock()
	callbacks := make([]func(), len(s.onStep))
	copy(callbacks, s.onStep)
	s.mu.Unlock()

	// Callbacks run outside the scheduler lock so they may take their own.
	for _, fn := range callbacks {
		fn()
	}

	s.mu.Lock()
	s.frame++
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

// Run drives the frame loop at the given interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// AwaitTicks suspends the caller until n frame boundaries have passed. The
// wait has no deadline of its own; it ends early only if ctx is done.
func (s *Scheduler) AwaitTicks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		ch := make(chan struct{})
		s.mu.Lock()
		s.waiters = append(s.waiters, ch)
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
	return nil
}
