// Package audit records the terminal outcome of every relay invocation in a
// local SQLite database.
//
// One row is written per invocation: outcome classification, segment count,
// upstream status (when a rejection occurred), duration, and the diagnostic
// error text if any. Message content is never stored; the audit trail is an
// operational record, not conversation history.
//
// Retention is enforced by a Pruner, optionally driven on a cron schedule by
// the Scheduler.
package audit
