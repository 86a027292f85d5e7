//go:build linux

package payload

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Exec replaces the current process image with the payload. On success
// it never returns: the payload inherits PID 1, so its exit code and
// signal handling become the container's directly.
func Exec(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty payload")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("resolve payload %q: %w", argv[0], err)
	}
	return unix.Exec(path, argv, os.Environ())
}
