// Package ovs starts the Open vSwitch daemons the emulation payload
// depends on and waits for them to come up.
//
// The one ordering rule that matters lives here: ovsdb-server must be
// running and answering on its control socket before ovs-vswitchd is
// started, because vswitchd reads its configuration from the database
// socket at startup.
package ovs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnetlab/cnetinit/internal/config"
)

// ErrNotReady indicates a daemon did not become ready within the
// configured timeout.
var ErrNotReady = errors.New("switching service not ready")

// Timings records how long each component took to become ready.
type Timings struct {
	DBReady       time.Duration
	VswitchdReady time.Duration
}

type Manager struct {
	cfg    config.OVS
	poll   time.Duration
	wait   time.Duration
	runner Runner
	logger *slog.Logger
}

func NewManager(cfg config.OVS, rd config.Readiness, runner Runner, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		poll:   rd.PollInterval(),
		wait:   rd.Timeout(),
		runner: runner,
		logger: logger,
	}
}

func (m *Manager) dbSock() string {
	return filepath.Join(m.cfg.RunDir, "db.sock")
}

// Start brings up ovsdb-server, then ovs-vswitchd, in that order, waiting
// for each to answer before moving on. In nested mode the kernel module
// load is skipped: the host kernel already carries the datapath and the
// container cannot modprobe anyway.
func (m *Manager) Start(ctx context.Context, nested bool) (Timings, error) {
	var t Timings

	if err := os.MkdirAll(m.cfg.RunDir, 0755); err != nil {
		return t, fmt.Errorf("create run dir: %w", err)
	}

	if err := m.ensureDatabase(ctx); err != nil {
		return t, err
	}

	m.logger.Info("starting ovsdb-server", "db", m.cfg.DBPath, "sock", m.dbSock())
	out, err := m.runner.Run(ctx, m.cfg.DBServerPath,
		"--detach", "--no-chdir", "--pidfile",
		"-vconsole:off", "--log-file",
		"--remote=punix:"+m.dbSock(),
		"--remote=db:Open_vSwitch,Open_vSwitch,manager_options",
		m.cfg.DBPath,
	)
	if err != nil {
		return t, fmt.Errorf("start ovsdb-server: %w: %s", err, strings.TrimSpace(string(out)))
	}

	start := time.Now()
	if err := m.waitReady(ctx, "ovsdb-server", m.checkDB); err != nil {
		return t, err
	}
	t.DBReady = time.Since(start)
	m.logger.Info("ovsdb-server ready", "after", t.DBReady)

	if nested {
		m.logger.Info("nested execution: skipping openvswitch module load")
	} else if out, err := m.runner.Run(ctx, m.cfg.ModprobePath, "openvswitch"); err != nil {
		// Userspace datapath still works without the module.
		m.logger.Warn("modprobe openvswitch failed, continuing",
			"error", err, "output", strings.TrimSpace(string(out)))
	}

	m.logger.Info("starting ovs-vswitchd")
	out, err = m.runner.Run(ctx, m.cfg.VswitchdPath,
		"--detach", "--no-chdir", "--pidfile",
		"-vconsole:off", "--log-file",
		"unix:"+m.dbSock(),
	)
	if err != nil {
		return t, fmt.Errorf("start ovs-vswitchd: %w: %s", err, strings.TrimSpace(string(out)))
	}

	start = time.Now()
	if err := m.waitReady(ctx, "ovs-vswitchd", m.checkVswitchd); err != nil {
		return t, err
	}
	t.VswitchdReady = time.Since(start)
	m.logger.Info("ovs-vswitchd ready", "after", t.VswitchdReady)

	return t, nil
}

// ensureDatabase creates the config database on first boot of a fresh
// image layer.
func (m *Manager) ensureDatabase(ctx context.Context) error {
	if _, err := os.Stat(m.cfg.DBPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", m.cfg.DBPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(m.cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	m.logger.Info("creating switch database", "db", m.cfg.DBPath)
	out, err := m.runner.Run(ctx, m.cfg.DBToolPath, "create", m.cfg.DBPath, m.cfg.SchemaPath)
	if err != nil {
		return fmt.Errorf("create database: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// checkDB proves ovsdb-server answers on its socket. --no-wait skips the
// wait for ovs-vswitchd registration, so this succeeds as soon as the
// database side is up.
func (m *Manager) checkDB(ctx context.Context) error {
	out, err := m.runner.Run(ctx, m.cfg.VsctlPath,
		"--db=unix:"+m.dbSock(), "--no-wait", "--timeout=2", "show")
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// checkVswitchd blocks on vswitchd having registered with the database,
// which is the signal that forwarding is functional.
func (m *Manager) checkVswitchd(ctx context.Context) error {
	out, err := m.runner.Run(ctx, m.cfg.VsctlPath,
		"--db=unix:"+m.dbSock(), "--timeout=2", "show")
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// waitReady polls check at a fixed interval until it succeeds, the
// timeout elapses, or ctx is canceled. Fail fast beats letting the
// payload hit a half-up switch later.
func (m *Manager) waitReady(ctx context.Context, name string, check func(context.Context) error) error {
	deadline := time.Now().Add(m.wait)

	var lastErr error
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("waiting for %s: %w", name, err)
		}

		lastErr = check(ctx)
		if lastErr == nil {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s did not become ready within %s: %v", ErrNotReady, name, m.wait, lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", name, ctx.Err())
		case <-time.After(m.poll):
		}
	}
}
