//go:build !linux

package netprep

import "errors"

var errUnsupported = errors.New("netprep: only supported on linux")

func EnsureLoopbackUp() error {
	return errUnsupported
}

func ListLinks() ([]Link, error) {
	return nil, errUnsupported
}
