package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for problems that would prevent the
// server from operating correctly. The upstream API key is deliberately not
// required here: the engine reports its absence per-invocation.
func Validate(cfg *Config) error {
	var problems []string

	// Server
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		problems = append(problems, fmt.Sprintf("server.listen_address %q is not host:port", cfg.Server.ListenAddress))
	}
	if cfg.Server.ReadTimeout < 0 {
		problems = append(problems, "server.read_timeout must not be negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		problems = append(problems, "server.write_timeout must not be negative")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}

	// Upstream
	if cfg.Upstream.BaseURL == "" {
		problems = append(problems, "upstream.base_url is required")
	} else if u, err := url.Parse(cfg.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("upstream.base_url %q is not an absolute URL", cfg.Upstream.BaseURL))
	}
	if cfg.Upstream.Model == "" {
		problems = append(problems, "upstream.model is required")
	}
	if cfg.Upstream.Temperature < 0 || cfg.Upstream.Temperature > 2 {
		problems = append(problems, "upstream.temperature must be in [0, 2]")
	}
	if cfg.Upstream.MaxTokens < 0 {
		problems = append(problems, "upstream.max_tokens must not be negative")
	}

	// Telemetry
	switch strings.ToLower(cfg.Telemetry.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.level %q is not one of debug, info, warn, error", cfg.Telemetry.Logging.Level))
	}
	switch strings.ToLower(cfg.Telemetry.Logging.Format) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.format %q is not one of json, text", cfg.Telemetry.Logging.Format))
	}
	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		problems = append(problems, fmt.Sprintf("telemetry.metrics.path %q must start with /", cfg.Telemetry.Metrics.Path))
	}

	// Audit
	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			problems = append(problems, "audit.path is required when audit is enabled")
		}
		if cfg.Audit.RetentionDays < 0 {
			problems = append(problems, "audit.retention_days must not be negative")
		}
		if cfg.Audit.PruneSchedule != "" {
			if _, err := cron.ParseStandard(cfg.Audit.PruneSchedule); err != nil {
				problems = append(problems, fmt.Sprintf("audit.prune_schedule %q is not a valid cron expression: %v", cfg.Audit.PruneSchedule, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
