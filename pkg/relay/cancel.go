package relay

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled marks the deliberate termination of a relay invocation. It is
// the cancellation cause installed by Canceller.Cancel, and the discriminant
// used to tell an abort apart from a genuine stream failure. Error-name or
// error-string matching is never used for this classification.
var ErrCancelled = errors.New("relay cancelled")

// Canceller binds a single cancellation signal to one relay invocation. The
// derived context is passed to the upstream HTTP request and checked by the
// read loop, so firing the signal halts the in-flight call and terminates the
// next read. Firing is idempotent: the abort happens at most once.
type Canceller struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	once   sync.Once
}

// NewCanceller derives a cancellable context from parent. Cancellation of the
// parent (for example a disconnecting client) fires the same signal.
func NewCanceller(parent context.Context) *Canceller {
	ctx, cancel := context.WithCancelCause(parent)
	return &Canceller{ctx: ctx, cancel: cancel}
}

// Context returns the context observed by the upstream request and read loop.
func (c *Canceller) Context() context.Context {
	return c.ctx
}

// Cancel fires the signal. Calling it more than once has the same observable
// effect as calling it once.
func (c *Canceller) Cancel() {
	c.once.Do(func() {
		c.cancel(ErrCancelled)
	})
}

// Aborted reports whether the signal has fired as a deliberate stop: an
// explicit Cancel, or plain cancellation of the parent context. A deadline
// expiry is not deliberate and classifies as a failure instead.
func (c *Canceller) Aborted() bool {
	cause := context.Cause(c.ctx)
	if cause == nil {
		return false
	}
	return errors.Is(cause, ErrCancelled) || errors.Is(cause, context.Canceled)
}

// release detaches the abort capability once the invocation reaches its
// terminal state, freeing the context resources without marking the
// invocation cancelled.
func (c *Canceller) release() {
	c.cancel(context.Canceled)
}
