package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"meridian-hq/ganymede/pkg/audit"
	"meridian-hq/ganymede/pkg/config"
	"meridian-hq/ganymede/pkg/relay"
	"meridian-hq/ganymede/pkg/server"
	"meridian-hq/ganymede/pkg/telemetry/logging"
	"meridian-hq/ganymede/pkg/telemetry/metrics"
	"meridian-hq/ganymede/pkg/transport"
	"meridian-hq/ganymede/pkg/upstream"
)

var watchConfig bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	runCmd.Flags().BoolVar(&watchConfig, "watch", false, "reload the config file on change")
	rootCmd.AddCommand(runCmd)
}

// engineState is the swappable pair of configuration snapshot and relay
// orchestrator. Hot reloads replace the whole pair atomically; in-flight
// invocations keep the orchestrator they started with.
type engineState struct {
	cfg    *config.Config
	engine *relay.Orchestrator
}

// buildEngine constructs an orchestrator from a configuration snapshot.
func buildEngine(cfg *config.Config, logger *slog.Logger) *engineState {
	client := upstream.NewClient(upstream.Config{
		BaseURL:             cfg.Upstream.BaseURL,
		APIKey:              cfg.Upstream.APIKey,
		Model:               cfg.Upstream.Model,
		Temperature:         cfg.Upstream.Temperature,
		MaxTokens:           cfg.Upstream.MaxTokens,
		Timeout:             cfg.Upstream.Timeout,
		MaxIdleConns:        cfg.Upstream.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Upstream.MaxIdleConnsPerHost,
	}, logger)
	return &engineState{
		cfg:    cfg,
		engine: relay.NewOrchestrator(client, logger),
	}
}

func runServer(ctx context.Context) error {
	// Load .env first so GANYMEDE_* overrides are visible to config loading.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}

	if cfg.Upstream.APIKey == "" {
		logger.Warn("no upstream API key configured; relays will fail until one is provided")
	}

	var state atomic.Pointer[engineState]
	state.Store(buildEngine(cfg, logger))

	// Telemetry
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	// Audit store
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		store, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer store.Close()

		recorder = audit.NewRecorder(store, logger)

		scheduler := audit.NewScheduler(
			audit.NewPruner(store, cfg.Audit.RetentionDays, logger),
			cfg.Audit.PruneSchedule,
		)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	// Config hot reload
	if watchConfig {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, func(next *config.Config) {
				state.Store(buildEngine(next, logger))
				logger.Info("relay engine rebuilt from reloaded configuration",
					"model", next.Upstream.Model,
				)
			}); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	chatHandler := transport.NewChatHandler(
		func() transport.Engine { return state.Load().engine },
		collector,
		recorder,
		logger,
	)
	statusHandler := transport.NewStatusHandler(Version, func() transport.StatusInfo {
		snapshot := state.Load().cfg
		return transport.StatusInfo{
			Model:              snapshot.Upstream.Model,
			UpstreamConfigured: snapshot.Upstream.APIKey != "",
		}
	}, logger)

	routes := server.Routes{
		Chat:   chatHandler,
		Status: statusHandler,
	}
	if collector != nil {
		routes.Metrics = collector.Handler()
		routes.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	srv := server.New(cfg.Server, routes)
	return srv.Start(ctx)
}
