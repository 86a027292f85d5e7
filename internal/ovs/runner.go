package ovs

import (
	"context"
	"os/exec"
	"time"
)

// Runner abstracts command execution so the start sequence can be tested
// against stub daemons.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host with a per-command timeout.
type ExecRunner struct {
	Timeout time.Duration
}

const defaultCommandTimeout = 30 * time.Second

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
