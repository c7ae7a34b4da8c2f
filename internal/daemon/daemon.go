package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"stitchflow/internal/config"
	"stitchflow/internal/engine"
	"stitchflow/internal/logging"
	"stitchflow/internal/preflight"
	"stitchflow/internal/workflow"
)

// Daemon owns the engine and store and enforces single-instance execution
// through a file lock in the data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *workflow.Store
	engine *engine.Engine

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	DBPath       string
	LockFilePath string
	Health       workflow.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *workflow.Store, eng *engine.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || eng == nil {
		return nil, errors.New("daemon requires config, store, and engine")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "stitchflowd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		engine:   eng,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start runs preflight checks and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	results := preflight.RunAll(d.cfg)
	if !preflight.AllPassed(results) {
		var failures []string
		for _, result := range results {
			if !result.Passed {
				failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
			}
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(failures, "; "))
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stitchflow daemon instance is already running")
	}

	d.running.Store(true)
	d.logger.Info("stitchflow daemon started",
		logging.String("lock", d.lockPath),
		logging.String("db", d.store.Path()),
	)
	return nil
}

// Stop releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("stitchflow daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Engine exposes the workflow engine for the IPC layer.
func (d *Daemon) Engine() *engine.Engine {
	return d.engine
}

// Status reports runtime state and store health.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	health, err := d.store.Health(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Running:      d.running.Load(),
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
		Health:       health,
	}, nil
}
