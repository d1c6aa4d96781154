package relay

import (
	"context"
	"testing"
	"time"
)

// TestCanceller_CancelIsIdempotent verifies that firing the signal twice has
// the same observable effect as firing it once.
func TestCanceller_CancelIsIdempotent(t *testing.T) {
	c := NewCanceller(context.Background())

	c.Cancel()
	c.Cancel()

	select {
	case <-c.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not done after Cancel")
	}

	if !c.Aborted() {
		t.Error("expected Aborted to report true after Cancel")
	}
	if cause := context.Cause(c.Context()); cause != ErrCancelled {
		t.Errorf("expected cause ErrCancelled, got %v", cause)
	}
}

// TestCanceller_ParentCancellationIsDeliberate verifies that a vanished
// client (plain parent cancellation) classifies as an abort, not a failure.
func TestCanceller_ParentCancellationIsDeliberate(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	c := NewCanceller(parent)

	cancel()

	select {
	case <-c.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not done after parent cancellation")
	}

	if !c.Aborted() {
		t.Error("expected parent cancellation to classify as deliberate")
	}
}

// TestCanceller_DeadlineIsNotDeliberate verifies that a deadline expiry is a
// failure, not a cancellation.
func TestCanceller_DeadlineIsNotDeliberate(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	c := NewCanceller(parent)

	<-c.Context().Done()

	if c.Aborted() {
		t.Error("expected deadline expiry not to classify as deliberate")
	}
}

// TestCanceller_NotAbortedWhileActive verifies the signal starts unfired.
func TestCanceller_NotAbortedWhileActive(t *testing.T) {
	c := NewCanceller(context.Background())
	defer c.Cancel()

	if c.Aborted() {
		t.Error("expected Aborted to report false before the signal fires")
	}
	select {
	case <-c.Context().Done():
		t.Error("context done before the signal fired")
	default:
	}
}
