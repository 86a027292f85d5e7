// Package nestenv decides whether the bootstrapper is running nested
// inside another container context. Nested execution restricts access to
// host kernel features (module loading in particular), so a few optional
// setup steps are skipped in that mode.
package nestenv

import (
	"os"
	"strconv"
	"strings"
)

// EnvNested is the flag baked into the image at build time.
// "1" (or any truthy value) means container-in-container execution.
const EnvNested = "CONTAINERNET_NESTED"

// Context is the execution context read once at bootstrap start and
// passed by value from there on.
type Context struct {
	Nested bool

	// RawFlag keeps the literal env value for logging.
	RawFlag string
}

// ParseFlag interprets the nested-execution flag. Unset, "0" and
// malformed values are all the non-nested default; only a parseable
// truthy value enables nested mode. The flag tunes optional setup steps,
// so a bad value is never fatal.
func ParseFlag(val string) bool {
	v := strings.TrimSpace(val)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// Detect reads the flag from the environment.
func Detect() Context {
	raw := os.Getenv(EnvNested)
	return Context{
		Nested:  ParseFlag(raw),
		RawFlag: raw,
	}
}

// InContainer reports whether well-known container indicators are
// present. Diagnostic only: the nested flag, not this heuristic, drives
// behavior.
func InContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	s := string(data)
	return strings.Contains(s, "docker") || strings.Contains(s, "containerd") || strings.Contains(s, "kubepods")
}
