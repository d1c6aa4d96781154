// Package config defines the Ganymede configuration model and loading logic.
//
// Configuration is loaded from a YAML file, filled in with defaults,
// overridden by GANYMEDE_* environment variables, and validated, in that
// order. The upstream API key is normally supplied by the environment
// (GANYMEDE_UPSTREAM_API_KEY, falling back to OPENAI_API_KEY) rather than the
// file; its absence is not a load error, the relay engine reports it
// per-invocation as a configuration failure before any upstream contact.
//
// A fsnotify-based Watcher supports hot reload of the configuration file so
// upstream tuning (model, temperature, max_tokens) can change without a
// restart.
package config
