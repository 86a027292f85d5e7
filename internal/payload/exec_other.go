//go:build !linux

package payload

import "errors"

// Exec requires process-image replacement, which this tree only wires
// up on linux. Non-linux callers fall back to Supervise.
func Exec(argv []string) error {
	return errors.New("payload: exec hand-off only supported on linux")
}
