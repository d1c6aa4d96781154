package config

import "time"

// Config is the root configuration structure for Ganymede. It contains all
// configuration sections for the HTTP server, the upstream completion
// endpoint, telemetry, and the outcome audit store.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the chat-completions endpoint
	// being relayed.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains configuration for the relay-outcome audit store.
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Zero disables it, which streaming deployments need for
	// long-lived relays. Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted. Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. Use ["*"] to allow all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to clients.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds. Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamConfig contains configuration for the upstream completion endpoint.
type UpstreamConfig struct {
	// BaseURL is the base URL of the chat-completions API.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer credential. Normally supplied via the
	// GANYMEDE_UPSTREAM_API_KEY environment variable rather than the file.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent with every request.
	// Default: "gpt-4o-mini"
	Model string `yaml:"model"`

	// Temperature is the sampling temperature. Default: 0.7
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the completion length. Default: 1024
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds the wait for upstream response headers. The streaming
	// body is unbounded; its lifetime is governed by the invocation's
	// cancellation signal. Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns tunes the connection pool. Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost tunes the per-host connection pool. Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text"). Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records. Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint. Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix. Default: "ganymede"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric name subsystem. Default: "relay"
	Subsystem string `yaml:"subsystem"`
}

// AuditConfig contains configuration for the relay-outcome audit store.
// Only terminal outcomes and counters are recorded, never message content.
type AuditConfig struct {
	// Enabled controls whether outcomes are recorded. Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path. Default: "ganymede_audit.db"
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept. Zero disables pruning.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables the scheduler. Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}
