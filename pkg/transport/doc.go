// Package transport carries relay events to HTTP clients.
//
// The chat endpoint accepts a JSON chat request, runs one relay invocation,
// and streams each segment event to the client as a Server-Sent Event the
// moment the engine emits it. The stream ends when the producer ends; there
// is no explicit end-of-stream payload. Client disconnects fire the
// invocation's cancellation signal through the request context.
//
// Diagnostic events share the segment shape (a single human-readable
// message); there is no separate error channel on an established stream.
package transport
