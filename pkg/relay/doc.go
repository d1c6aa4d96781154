// Package relay implements the streaming relay and incremental segmentation
// engine at the heart of Ganymede.
//
// A relay invocation takes a validated chat request, opens a streaming
// completion call against the upstream endpoint, decodes the response body
// incrementally, splits the decoded text at natural sentence boundaries
// (mixed CJK/Latin), and pushes each completed segment to the transport the
// moment it is known. Every invocation ends in exactly one terminal outcome:
// completed, error, or cancelled.
//
// The engine is transport-agnostic. It exposes an Invocation whose Events
// channel carries ordered segment events; the channel closing is the terminal
// signal. Cancellation is a first-class, one-shot, idempotent operation wired
// to both the upstream HTTP request and the local read loop.
//
// Components:
//
//   - Segmenter (segmenter.go): pure boundary detection, no I/O.
//   - StreamReader (reader.go): byte read loop with incremental UTF-8 decode.
//   - Canceller (cancel.go): one-shot abort with an explicit
//     cancellation-vs-failure discriminant.
//   - Orchestrator (orchestrator.go): drives the pipeline and guarantees the
//     terminal-outcome contract.
package relay
