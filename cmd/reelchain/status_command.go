package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"reelchain/internal/config"
	"reelchain/internal/preflight"
	"reelchain/internal/store"
	"reelchain/internal/tmdb"
)

type statusReport struct {
	ConfigPath    string             `json:"configPath"`
	DatabasePath  string             `json:"databasePath"`
	SchemaVersion int64              `json:"schemaVersion"`
	PuzzleCount   int                `json:"puzzleCount"`
	DaemonRunning bool               `json:"daemonRunning"`
	Checks        []preflight.Result `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipTMDB bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, storage, and TMDB readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				report := statusReport{
					ConfigPath:    ctx.configPath,
					DatabasePath:  st.Path(),
					DaemonRunning: daemonLockHeld(cfg),
				}
				var err error
				if report.PuzzleCount, err = st.Count(cmd.Context()); err != nil {
					return err
				}
				if report.SchemaVersion, err = st.SchemaVersion(cmd.Context()); err != nil {
					return err
				}

				var pinger preflight.Pinger
				if !skipTMDB {
					logger, err := ctx.logger(cfg)
					if err != nil {
						return err
					}
					client, err := tmdb.NewFromConfig(cfg, logger)
					if err != nil {
						return err
					}
					pinger = client
				}
				report.Checks = preflight.RunAll(cmd.Context(), cfg, pinger)

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				renderStatus(cmd, cfg, report)
				if failed := preflight.Failed(report.Checks); len(failed) > 0 {
					return fmt.Errorf("%d readiness check(s) failed", len(failed))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&skipTMDB, "offline", false, "Skip the TMDB connectivity probe")
	return cmd
}

func renderStatus(cmd *cobra.Command, cfg *config.Config, report statusReport) {
	configDetail := report.ConfigPath
	if configDetail == "" {
		configDetail = "defaults"
	}
	daemon := statusLine{label: "Daemon", kind: statusWarn, message: "Not running"}
	if report.DaemonRunning {
		daemon = statusLine{label: "Daemon", kind: statusOK, message: "Running (" + cfg.API.Bind + ")"}
	}
	overview := statusSection{title: "reelchain", lines: []statusLine{
		{label: "Config", message: configDetail},
		{label: "Database", message: fmt.Sprintf("%s (schema v%d)", report.DatabasePath, report.SchemaVersion)},
		{label: "Stored puzzles", message: strconv.Itoa(report.PuzzleCount)},
		{label: "Archive", message: yesNo(cfg.Archive.Enabled)},
		daemon,
	}}
	readiness := statusSection{title: "Readiness", lines: checkLines(report.Checks)}

	out := cmd.OutOrStdout()
	writeSections(out, []statusSection{overview, readiness}, shouldColorize(out))
}

// daemonLockHeld reports whether another process holds the daemon lock. When
// the lock cannot be inspected it falls back to probing the bind address.
func daemonLockHeld(cfg *config.Config) bool {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err == nil {
		if ok {
			_ = lock.Unlock()
			return false
		}
		return true
	}
	conn, dialErr := net.DialTimeout("tcp", cfg.API.Bind, 500*time.Millisecond)
	if dialErr != nil {
		return false
	}
	_ = conn.Close()
	return true
}
