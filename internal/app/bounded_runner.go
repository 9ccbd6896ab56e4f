// Package app contains the application layer - service implementations and the
// bounded execution of remote mutations.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/nsfwsweep/internal/core/cleanup"
)

// DefaultOperationTimeout is the wall-clock budget for one remote mutation.
const DefaultOperationTimeout = 20 * time.Second

// OperationRunner executes a single remote mutation.
type OperationRunner interface {
	Run(ctx context.Context, action func(ctx context.Context) error) error
}

// BoundedRunner runs each action on its own goroutine and waits at most timeout.
//
// On timeout the goroutine is abandoned: its context is cancelled so a
// context-aware HTTP call is torn down, but its eventual result is discarded.
// The caller observes at most one result; it must not assume the remote call
// had no effect.
type BoundedRunner struct {
	timeout time.Duration
}

// NewBoundedRunner creates a BoundedRunner. A non-positive timeout selects
// DefaultOperationTimeout.
func NewBoundedRunner(timeout time.Duration) *BoundedRunner {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	return &BoundedRunner{timeout: timeout}
}

// Timeout returns the per-action time budget.
func (r *BoundedRunner) Timeout() time.Duration {
	return r.timeout
}

// Run invokes action exactly once.
// Returns nil on success, the action's own error if it failed in time,
// cleanup.ErrTimedOut if it did not finish in time, or ctx.Err() if the
// parent context ended first.
func (r *BoundedRunner) Run(ctx context.Context, action func(ctx context.Context) error) error {
	actionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so an abandoned goroutine can always deliver and exit.
	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("operation panicked: %v", p)
			}
		}()
		done <- action(actionCtx)
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%w after %s", cleanup.ErrTimedOut, r.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ OperationRunner = (*BoundedRunner)(nil)
