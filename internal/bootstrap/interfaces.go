package bootstrap

import (
	"context"
	"log/slog"

	"github.com/cnetlab/cnetinit/internal/journal"
	"github.com/cnetlab/cnetinit/internal/ovs"
)

// SwitchManager abstracts the switching-service start sequence.
type SwitchManager interface {
	Start(ctx context.Context, nested bool) (ovs.Timings, error)
}

// BootJournal abstracts the boot journal. All methods are best-effort
// from the bootstrapper's point of view.
type BootJournal interface {
	Record(e journal.Entry) error
	SetOutcome(bootID, outcome string, exitCode int) error
	Close() error
}

// DaemonPinger abstracts the Docker daemon preflight used in nested mode.
type DaemonPinger interface {
	Ping(ctx context.Context) error
	ServerVersion(ctx context.Context) (string, error)
	Close() error
}

// ExecFunc replaces the current process image with the payload.
type ExecFunc func(argv []string) error

// SuperviseFunc runs the payload as a child and returns its exit code.
type SuperviseFunc func(argv []string, logger *slog.Logger) (int, error)
