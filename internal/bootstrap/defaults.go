package bootstrap

import (
	"log/slog"

	"github.com/cnetlab/cnetinit/internal/netprep"
	"github.com/cnetlab/cnetinit/internal/payload"
)

func defaultExec(argv []string) error {
	return payload.Exec(argv)
}

func defaultSupervise(argv []string, logger *slog.Logger) (int, error) {
	return payload.Supervise(argv, logger)
}

func defaultLoopback() error {
	return netprep.EnsureLoopbackUp()
}
