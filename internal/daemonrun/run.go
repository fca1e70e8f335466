// Package daemonrun hosts the process-level runtime for `reelchain serve`.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"reelchain/internal/api"
	"reelchain/internal/config"
	"reelchain/internal/daemon"
	"reelchain/internal/logging"
	"reelchain/internal/preflight"
	"reelchain/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the reelchain daemon and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if strings.TrimSpace(opts.LogLevel) != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	sessionID := uuid.NewString()
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open puzzle store", logging.Error(err))
		return err
	}
	defer st.Close()

	components, err := api.NewFromConfig(cfg, st, logger)
	if err != nil {
		return err
	}
	logStartupSnapshot(signalCtx, logger, cfg, components)

	d, err := daemon.New(cfg, components.Service, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check api.bind and that no other reelchain daemon is running"),
		)
		return err
	}
	defer d.Stop()

	<-signalCtx.Done()
	logger.Info("reelchain daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func logStartupSnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config, components *api.Components) {
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.Bool("tmdb_token_present", cfg.TMDB.APIToken != ""),
		logging.Bool("tmdb_key_present", cfg.TMDB.APIKey != ""),
		logging.Int("lowest_year", cfg.Puzzle.LowestYear),
		logging.Any("excluded_genres", cfg.Puzzle.ExcludedGenres),
		logging.Int("credits_capacity", cfg.Cache.CreditsCapacity),
		logging.Bool("archive_enabled", cfg.Archive.Enabled),
		logging.String("database", cfg.DatabasePath()),
	)
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg, components.Client)) {
		logger.Warn("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "puzzle generation may fail until resolved"),
		)
	}
}
