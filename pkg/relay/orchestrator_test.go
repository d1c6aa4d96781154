package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeOpener is a test double for the upstream client. It counts calls and
// serves either an error or a canned body.
type fakeOpener struct {
	calls atomic.Int32
	err   error
	body  func(ctx context.Context) io.ReadCloser
}

func (f *fakeOpener) OpenStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.body(ctx), nil
}

// stringBody serves chunks as reads and honors cancellation the way an HTTP
// response body does: a blocked Read returns once the request context ends.
type stringBody struct {
	ctx    context.Context
	chunks []string
	index  int
	block  bool // block after the chunks instead of returning EOF
	closed atomic.Int32
}

func (b *stringBody) Read(p []byte) (int, error) {
	if err := b.ctx.Err(); err != nil {
		return 0, err
	}
	if b.index >= len(b.chunks) {
		if b.block {
			<-b.ctx.Done()
			return 0, b.ctx.Err()
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[b.index])
	b.index++
	return n, nil
}

func (b *stringBody) Close() error {
	b.closed.Add(1)
	return nil
}

// collect drains the invocation and returns all event messages.
func collect(t *testing.T, inv *Invocation) []string {
	t.Helper()
	var messages []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range inv.Events() {
			messages = append(messages, ev.Message)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("invocation did not terminate")
	}
	return messages
}

func userRequest(content string) *ChatRequest {
	return &ChatRequest{Messages: []Message{{Role: RoleUser, Content: content}}}
}

// TestOrchestrator_StreamsSegmentsInOrder verifies the happy path: ordered
// segments, remainder flushed on drain, completed outcome.
func TestOrchestrator_StreamsSegmentsInOrder(t *testing.T) {
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &stringBody{ctx: ctx, chunks: []string{"你好。世", "界！Hello. ", "tail"}}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	messages := collect(t, inv)

	want := []string{"你好。", "世界！", "Hello. ", "tail"}
	if len(messages) != len(want) {
		t.Fatalf("expected events %q, got %q", want, messages)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], messages[i])
		}
	}
	if inv.Outcome() != OutcomeCompleted {
		t.Errorf("expected OutcomeCompleted, got %v", inv.Outcome())
	}
	if inv.Segments() != len(want) {
		t.Errorf("expected %d segments, got %d", len(want), inv.Segments())
	}
}

// TestOrchestrator_FlushesUnterminatedText verifies that text with no
// boundary at all is flushed as exactly one segment at stream end.
func TestOrchestrator_FlushesUnterminatedText(t *testing.T) {
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &stringBody{ctx: ctx, chunks: []string{"abc", "def"}}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	messages := collect(t, inv)

	if len(messages) != 1 || messages[0] != "abcdef" {
		t.Fatalf("expected exactly one flushed segment %q, got %q", "abcdef", messages)
	}
	if inv.Outcome() != OutcomeCompleted {
		t.Errorf("expected OutcomeCompleted, got %v", inv.Outcome())
	}
}

// TestOrchestrator_RejectsWhitespaceOnlyRequest verifies validation happens
// before any upstream contact.
func TestOrchestrator_RejectsWhitespaceOnlyRequest(t *testing.T) {
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &stringBody{ctx: ctx}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("   \n\t "))
	messages := collect(t, inv)

	if len(messages) != 1 {
		t.Fatalf("expected exactly one diagnostic event, got %q", messages)
	}
	if inv.Outcome() != OutcomeError {
		t.Errorf("expected OutcomeError, got %v", inv.Outcome())
	}
	var verr *ValidationError
	if !errors.As(inv.Err(), &verr) {
		t.Errorf("expected a *ValidationError, got %v", inv.Err())
	}
	if n := opener.calls.Load(); n != 0 {
		t.Errorf("expected zero upstream calls, got %d", n)
	}
}

// TestOrchestrator_UpstreamRejectionYieldsOneDiagnostic verifies that a
// non-success upstream status produces exactly one diagnostic event carrying
// the status code, and no further events.
func TestOrchestrator_UpstreamRejectionYieldsOneDiagnostic(t *testing.T) {
	rejection := fmt.Errorf("upstream rejected request (status 401): invalid API key")
	opener := &fakeOpener{err: rejection}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	messages := collect(t, inv)

	if len(messages) != 1 {
		t.Fatalf("expected exactly one diagnostic event, got %q", messages)
	}
	if !strings.Contains(messages[0], "401") {
		t.Errorf("expected diagnostic to carry the status code, got %q", messages[0])
	}
	if inv.Outcome() != OutcomeError {
		t.Errorf("expected OutcomeError, got %v", inv.Outcome())
	}
}

// TestOrchestrator_CancelBeforeFirstByte verifies that cancelling before any
// upstream byte arrives ends the producer silently: zero segment events and
// zero diagnostic events.
func TestOrchestrator_CancelBeforeFirstByte(t *testing.T) {
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &stringBody{ctx: ctx, block: true}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	inv.Cancel()
	messages := collect(t, inv)

	if len(messages) != 0 {
		t.Fatalf("expected no events after cancellation, got %q", messages)
	}
	if inv.Outcome() != OutcomeCancelled {
		t.Errorf("expected OutcomeCancelled, got %v", inv.Outcome())
	}
}

// TestOrchestrator_CancelIsIdempotent verifies that cancelling twice has the
// same observable effect as cancelling once: one terminal signal, no faults.
func TestOrchestrator_CancelIsIdempotent(t *testing.T) {
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &stringBody{ctx: ctx, block: true}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	inv.Cancel()
	inv.Cancel()
	messages := collect(t, inv)

	if len(messages) != 0 {
		t.Fatalf("expected no events, got %q", messages)
	}
	if inv.Outcome() != OutcomeCancelled {
		t.Errorf("expected OutcomeCancelled, got %v", inv.Outcome())
	}
}

// TestOrchestrator_MidStreamCancelAfterSegments verifies that segments
// delivered before the signal fires stand, and no diagnostic follows.
func TestOrchestrator_MidStreamCancelAfterSegments(t *testing.T) {
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &stringBody{ctx: ctx, chunks: []string{"First. "}, block: true}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))

	var messages []string
	for ev := range inv.Events() {
		messages = append(messages, ev.Message)
		inv.Cancel()
	}

	if len(messages) != 1 || messages[0] != "First. " {
		t.Fatalf("expected the delivered segment only, got %q", messages)
	}
	if inv.Outcome() != OutcomeCancelled {
		t.Errorf("expected OutcomeCancelled, got %v", inv.Outcome())
	}
}

// TestOrchestrator_MidStreamFailureYieldsDiagnostic verifies that a genuine
// stream failure surfaces as one diagnostic event after the delivered
// segments.
func TestOrchestrator_MidStreamFailureYieldsDiagnostic(t *testing.T) {
	readErr := errors.New("connection reset by peer")
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		return &failingBody{chunks: []string{"First. "}, err: readErr}
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	messages := collect(t, inv)

	if len(messages) != 2 {
		t.Fatalf("expected one segment plus one diagnostic, got %q", messages)
	}
	if messages[0] != "First. " {
		t.Errorf("expected first event %q, got %q", "First. ", messages[0])
	}
	if !strings.Contains(messages[1], "connection reset") {
		t.Errorf("expected diagnostic to describe the failure, got %q", messages[1])
	}
	if inv.Outcome() != OutcomeError {
		t.Errorf("expected OutcomeError, got %v", inv.Outcome())
	}
	var serr *StreamError
	if !errors.As(inv.Err(), &serr) {
		t.Errorf("expected a *StreamError, got %v", inv.Err())
	}
}

// failingBody serves chunks then fails with a read error.
type failingBody struct {
	chunks []string
	index  int
	err    error
}

func (b *failingBody) Read(p []byte) (int, error) {
	if b.index >= len(b.chunks) {
		return 0, b.err
	}
	n := copy(p, b.chunks[b.index])
	b.index++
	return n, nil
}

func (b *failingBody) Close() error { return nil }

// TestOrchestrator_ReleasesBodyOnCompletion verifies the upstream handle is
// closed on the normal exit path.
func TestOrchestrator_ReleasesBodyOnCompletion(t *testing.T) {
	var body *stringBody
	opener := &fakeOpener{body: func(ctx context.Context) io.ReadCloser {
		body = &stringBody{ctx: ctx, chunks: []string{"Done. "}}
		return body
	}}
	o := NewOrchestrator(opener, nil)

	inv := o.Relay(context.Background(), userRequest("hi"))
	collect(t, inv)

	if n := body.closed.Load(); n != 1 {
		t.Errorf("expected body closed exactly once, got %d", n)
	}
}
