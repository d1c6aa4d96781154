package relay

import "strings"

// Message roles in a chat conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	// Role identifies the author ("system", "user", "assistant").
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatRequest is the validated input to one relay invocation. It is immutable
// once constructed and owned by exactly one invocation.
type ChatRequest struct {
	// Messages is the ordered conversation to relay upstream.
	Messages []Message `json:"messages"`

	// System is an optional system directive prepended to the conversation.
	System *Message `json:"system_directive,omitempty"`
}

// Validate checks that the request carries at least one message with
// non-empty, non-whitespace content. It returns a *ValidationError otherwise.
func (r *ChatRequest) Validate() error {
	if r == nil || len(r.Messages) == 0 {
		return &ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	for _, m := range r.Messages {
		if strings.TrimSpace(m.Content) != "" {
			return nil
		}
	}
	return &ValidationError{Field: "messages", Message: "message content must not be empty or whitespace-only"}
}

// Event is one unit of output pushed to the transport. Completed segments and
// diagnostic messages share this shape; there is no separate error channel.
type Event struct {
	Message string `json:"message"`
}

// Outcome is the terminal classification of a relay invocation. Exactly one
// outcome is produced per invocation and it is observable only after the
// event channel has closed.
type Outcome int

const (
	// OutcomeCompleted means the upstream stream closed normally and any
	// trailing remainder was flushed.
	OutcomeCompleted Outcome = iota

	// OutcomeError means validation, configuration, upstream rejection, or a
	// mid-stream failure ended the invocation. One diagnostic event precedes
	// the terminal signal.
	OutcomeError

	// OutcomeCancelled means the cancellation signal fired before natural
	// completion. No diagnostic event is produced; the producer simply ends.
	OutcomeCancelled
)

// String returns the outcome name for logging and audit records.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeError:
		return "error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
