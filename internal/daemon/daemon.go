package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"reelchain/internal/config"
	"reelchain/internal/logging"
)

// Daemon owns the HTTP server lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	server *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon serving svc.
func New(cfg *config.Config, svc PuzzleService, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("daemon requires config and puzzle service")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	router := NewRouter(svc, RouterOptions{
		GeneratePerMinute: cfg.API.GeneratePerMinute,
		CORSOrigins:       cfg.API.CORSOrigins,
		Logger:            logger,
	})
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		server:   newAPIServer(cfg.API.Bind, router, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins serving. The server shuts down
// when ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelchain daemon instance is already running")
	}

	if err := d.server.start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("reelchain daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.address()),
	)
	return nil
}

// Stop shuts down the server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath),
		)
	}
	d.running.Store(false)
	d.logger.Info("reelchain daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Status reports the current daemon state.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Address:      d.server.address(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
	}
}
