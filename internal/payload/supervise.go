// Package payload hands the container over to the user's command once
// the networking substrate is up. The default path replaces the process
// image so no wrapper remains between the runtime and the payload; the
// supervised path spawns a child and forwards signals instead.
package payload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
)

// forwardedSignals is the set relayed to a supervised payload. TERM/INT
// cover orchestrator shutdown, HUP/QUIT/USR1/USR2 are passed through for
// payloads that use them, WINCH keeps an interactive pty sized.
var forwardedSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
	syscall.SIGHUP,
	syscall.SIGQUIT,
	syscall.SIGUSR1,
	syscall.SIGUSR2,
	syscall.SIGWINCH,
}

// Supervise runs the payload as a child, forwards signals to it, and
// returns its exit code. A payload killed by a signal maps to 128+sig,
// matching shell convention.
func Supervise(argv []string, logger *slog.Logger) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty payload")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return 0, fmt.Errorf("resolve payload %q: %w", argv[0], err)
	}

	cmd := exec.Command(path, argv[1:]...)

	var ptmx *os.File
	if stdinIsTerminal() {
		// Interactive payloads (the testbed CLI) need a controlling
		// terminal; without one readline-style prompts misbehave.
		ptmx, err = pty.Start(cmd)
		if err != nil {
			return 0, fmt.Errorf("start payload on pty: %w", err)
		}
		defer ptmx.Close()

		_ = pty.InheritSize(os.Stdin, ptmx)
		go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
		go func() { _, _ = io.Copy(os.Stdout, ptmx) }()
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return 0, fmt.Errorf("start payload: %w", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, forwardedSignals...)

	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGWINCH {
				if ptmx != nil {
					_ = pty.InheritSize(os.Stdin, ptmx)
				}
				continue
			}
			logger.Debug("forwarding signal to payload", "signal", sig)
			_ = cmd.Process.Signal(sig)
		}
	}()

	err = cmd.Wait()
	signal.Stop(sigCh)
	close(sigCh)
	return exitCode(err)
}

// exitCode translates a Wait error into the payload's exit status.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return 0, fmt.Errorf("wait for payload: %w", err)
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
