// Package bootstrap runs the once-per-container startup sequence: read
// the execution context, bring up the switching service in dependency
// order, then hand the process over to the user's command.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cnetlab/cnetinit/internal/config"
	"github.com/cnetlab/cnetinit/internal/journal"
	"github.com/cnetlab/cnetinit/internal/nestenv"
)

// ExitBootFailure is returned when the switching service never became
// ready or the hand-off itself failed. Chosen away from common payload
// exit codes so the two are distinguishable from outside.
const ExitBootFailure = 111

const dockerPreflightTimeout = 5 * time.Second

type Options struct {
	Config  *config.Config
	Env     nestenv.Context
	Payload []string // container CMD; empty means the configured default
	Switch  SwitchManager
	Journal BootJournal  // nil disables journaling
	Docker  DaemonPinger // nil skips the nested-mode preflight
	Logger  *slog.Logger

	// Hand-off hooks; left nil they default to payload.Exec /
	// payload.Supervise. Injected by tests.
	ExecFn      ExecFunc
	SuperviseFn SuperviseFunc

	// LoopbackFn defaults to netprep.EnsureLoopbackUp.
	LoopbackFn func() error
}

// Run executes the bootstrap sequence and returns the container's exit
// code. It only returns after the payload finished (supervised mode) or
// when something prevented the hand-off; the exec path does not return
// at all on success.
func Run(ctx context.Context, opts Options) int {
	logger := opts.Logger
	cfg := opts.Config

	bootID := uuid.NewString()
	startedAt := time.Now()

	argv := opts.Payload
	if len(argv) == 0 {
		argv = cfg.DefaultPayload
	}

	// Closed explicitly before the exec hand-off; the deferred close
	// covers every returning path and closing twice is harmless.
	defer closeJournal(opts)

	logger.Info("bootstrap starting",
		"boot_id", bootID,
		"nested", opts.Env.Nested,
		"nested_flag", opts.Env.RawFlag,
		"in_container", nestenv.InContainer(),
		"payload", journal.FormatPayload(argv),
	)

	// A termination signal before hand-off aborts the startup sequence.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if opts.Env.Nested && opts.Docker != nil {
		pingCtx, cancel := context.WithTimeout(ctx, dockerPreflightTimeout)
		if err := opts.Docker.Ping(pingCtx); err != nil {
			logger.Warn("nested mode but docker daemon unreachable — sibling containers will not start",
				"error", err)
		} else if v, err := opts.Docker.ServerVersion(pingCtx); err == nil {
			logger.Info("docker daemon reachable", "version", v)
		}
		cancel()
	}

	loopback := opts.LoopbackFn
	if loopback == nil {
		loopback = defaultLoopback
	}
	if err := loopback(); err != nil {
		logger.Warn("loopback bring-up failed, continuing", "error", err)
	}

	timings, err := opts.Switch.Start(ctx, opts.Env.Nested)
	if err != nil {
		outcome := journal.OutcomeBootFailed
		if errors.Is(err, context.Canceled) {
			outcome = journal.OutcomeInterrupted
			logger.Info("bootstrap interrupted by signal before hand-off")
		} else {
			logger.Error("switching service failed to start", "error", err)
		}
		record(opts, journal.Entry{
			BootID:    bootID,
			StartedAt: startedAt,
			Nested:    opts.Env.Nested,
			Payload:   journal.FormatPayload(argv),
			Outcome:   outcome,
			ExitCode:  ExitBootFailure,
		})
		return ExitBootFailure
	}

	record(opts, journal.Entry{
		BootID:        bootID,
		StartedAt:     startedAt,
		Nested:        opts.Env.Nested,
		DBReadyMs:     timings.DBReady.Milliseconds(),
		SwitchReadyMs: timings.VswitchdReady.Milliseconds(),
		Payload:       journal.FormatPayload(argv),
		Outcome:       journal.OutcomeStarted,
	})

	// Bail out if a signal landed between readiness and hand-off.
	if ctx.Err() != nil {
		logger.Info("bootstrap interrupted by signal before hand-off")
		setOutcome(opts, bootID, journal.OutcomeInterrupted, ExitBootFailure)
		return ExitBootFailure
	}

	// From here the payload owns signal handling.
	stop()

	if cfg.Supervise {
		code, err := opts.superviseFn()(argv, logger)
		if err != nil {
			logger.Error("supervise payload", "error", err)
			setOutcome(opts, bootID, journal.OutcomeBootFailed, ExitBootFailure)
			return ExitBootFailure
		}
		setOutcome(opts, bootID, journal.OutcomeExited, code)
		return code
	}

	closeJournal(opts)
	if err := opts.execFn()(argv); err != nil {
		// Exec only returns on failure.
		logger.Error("exec payload", "error", err)
		return ExitBootFailure
	}
	return 0
}

func (o Options) execFn() ExecFunc {
	if o.ExecFn != nil {
		return o.ExecFn
	}
	return defaultExec
}

func (o Options) superviseFn() SuperviseFunc {
	if o.SuperviseFn != nil {
		return o.SuperviseFn
	}
	return defaultSupervise
}

func record(opts Options, e journal.Entry) {
	if opts.Journal == nil {
		return
	}
	if err := opts.Journal.Record(e); err != nil {
		opts.Logger.Warn("boot journal write failed", "error", err)
	}
}

func setOutcome(opts Options, bootID, outcome string, code int) {
	if opts.Journal == nil {
		return
	}
	if err := opts.Journal.SetOutcome(bootID, outcome, code); err != nil {
		opts.Logger.Warn("boot journal update failed", "error", err)
	}
}

func closeJournal(opts Options) {
	if opts.Journal == nil {
		return
	}
	if err := opts.Journal.Close(); err != nil {
		opts.Logger.Warn("boot journal close failed", "error", err)
	}
}
