package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// UpstreamOpener issues the streaming completion call. A successful open
// returns the response body as an undifferentiated byte stream; the engine
// relies only on decoded text content, never on upstream framing. A non-2xx
// status, a missing credential, or a transport failure is returned as an
// error before any body is handed over.
type UpstreamOpener interface {
	OpenStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error)
}

// Orchestrator drives relay invocations. It is stateless and safe for
// concurrent use; all per-invocation state lives in the Invocation.
type Orchestrator struct {
	upstream UpstreamOpener
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given upstream.
func NewOrchestrator(upstream UpstreamOpener, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		upstream: upstream,
		logger:   logger.With("component", "relay"),
	}
}

// Invocation is one end-to-end relay of a single chat request, from
// validation through terminal outcome.
//
// Events is an unbuffered channel: each segment is delivered to the consumer
// before the next upstream read is issued, so a slow consumer applies
// backpressure all the way to the network. The channel closing is the
// terminal signal; Outcome, Err, and the counters are valid only after that.
type Invocation struct {
	events    chan Event
	canceller *Canceller

	started time.Time

	// Terminal state, written by the pipeline goroutine before the events
	// channel closes. The close is the happens-before edge for readers.
	outcome      Outcome
	err          error
	segments     int
	firstSegment time.Duration
}

// Events returns the ordered segment/diagnostic event stream.
func (inv *Invocation) Events() <-chan Event {
	return inv.events
}

// Cancel fires the invocation's cancellation signal. Idempotent.
func (inv *Invocation) Cancel() {
	inv.canceller.Cancel()
}

// Outcome returns the terminal classification. Valid after Events closes.
func (inv *Invocation) Outcome() Outcome {
	return inv.outcome
}

// Err returns the terminal error for OutcomeError invocations, nil otherwise.
// Valid after Events closes.
func (inv *Invocation) Err() error {
	return inv.err
}

// Segments returns the number of segments emitted. Valid after Events closes.
func (inv *Invocation) Segments() int {
	return inv.segments
}

// Duration returns the elapsed time since the invocation started.
func (inv *Invocation) Duration() time.Duration {
	return time.Since(inv.started)
}

// FirstSegmentLatency returns the time from start to the first emitted
// segment, or zero if no segment was emitted. Valid after Events closes.
func (inv *Invocation) FirstSegmentLatency() time.Duration {
	return inv.firstSegment
}

// push delivers one event unless the cancellation signal has fired. It
// reports whether the event was accepted; no event is ever pushed after the
// signal fires.
func (inv *Invocation) push(ev Event) bool {
	select {
	case inv.events <- ev:
		return true
	case <-inv.canceller.Context().Done():
		return false
	}
}

// emit pushes a completed segment and updates the counters.
func (inv *Invocation) emit(seg string) bool {
	if !inv.push(Event{Message: seg}) {
		return false
	}
	if inv.segments == 0 {
		inv.firstSegment = time.Since(inv.started)
	}
	inv.segments++
	return true
}

// Relay starts one invocation for the given request and returns immediately.
// The caller consumes Events until it closes; cancelling ctx or calling
// Invocation.Cancel stops the invocation cooperatively.
func (o *Orchestrator) Relay(ctx context.Context, req *ChatRequest) *Invocation {
	inv := &Invocation{
		events:    make(chan Event),
		canceller: NewCanceller(ctx),
		started:   time.Now(),
	}
	go o.run(inv, req)
	return inv
}

// run executes the invocation state machine:
//
//	Validating -> AwaitingUpstream -> Streaming -> Draining -> Terminal
//
// All failures are absorbed here and converted into the single observable
// channel; nothing propagates past the orchestrator.
func (o *Orchestrator) run(inv *Invocation, req *ChatRequest) {
	defer close(inv.events)
	defer inv.canceller.release()
	defer func() {
		if rec := recover(); rec != nil {
			err := &StreamError{Message: fmt.Sprintf("relay pipeline panic: %v", rec)}
			o.logger.Error("panic in relay pipeline", "error", err)
			inv.push(Event{Message: err.Error()})
			inv.outcome = OutcomeError
			inv.err = err
		}
	}()

	ctx := inv.canceller.Context()

	// Validating
	if err := req.Validate(); err != nil {
		o.logger.Warn("request rejected", "error", err)
		inv.push(Event{Message: err.Error()})
		inv.outcome = OutcomeError
		inv.err = err
		return
	}

	// AwaitingUpstream
	body, err := o.upstream.OpenStream(ctx, req)
	if err != nil {
		if inv.canceller.Aborted() {
			o.logger.Debug("invocation cancelled before upstream stream opened")
			inv.outcome = OutcomeCancelled
			return
		}
		o.logger.Error("upstream stream failed to open", "error", err)
		inv.push(Event{Message: err.Error()})
		inv.outcome = OutcomeError
		inv.err = err
		return
	}

	// Streaming
	reader := NewStreamReader(body)
	remainder := ""
	streamErr := reader.Run(ctx, func(fragment string) error {
		segments, tail := Segment(remainder, fragment)
		remainder = tail
		for _, seg := range segments {
			if !inv.emit(seg) {
				return context.Cause(ctx)
			}
		}
		return nil
	})

	if streamErr != nil {
		if inv.canceller.Aborted() {
			o.logger.Debug("invocation cancelled mid-stream",
				"segments", inv.segments,
			)
			inv.outcome = OutcomeCancelled
			return
		}
		serr := &StreamError{Message: "upstream stream failed", Cause: streamErr}
		o.logger.Error("upstream stream failed", "error", streamErr, "segments", inv.segments)
		inv.push(Event{Message: serr.Error()})
		inv.outcome = OutcomeError
		inv.err = serr
		return
	}

	// Draining: flush the unterminated tail as one final segment.
	if remainder != "" {
		if !inv.emit(remainder) {
			inv.outcome = OutcomeCancelled
			return
		}
	}

	o.logger.Info("relay completed",
		"segments", inv.segments,
		"duration_ms", time.Since(inv.started).Milliseconds(),
	)
	inv.outcome = OutcomeCompleted
}
