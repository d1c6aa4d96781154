// Package upstream implements the HTTP client for the chat-completions
// endpoint being relayed.
//
// The client issues a single streaming POST per relay invocation and hands
// the successful response body to the engine as an undifferentiated byte
// stream. It performs no retries: the relay is at-most-once, and retry policy
// belongs to the caller, not to this client. Non-success responses are
// decoded best-effort into a RejectionError carrying the status code and the
// most useful message available.
package upstream
