package ovs

import (
	"context"
	"slices"
	"sync"
)

// recordedCall is one command the manager asked the runner to execute.
type recordedCall struct {
	name string
	args []string
}

// fakeRunner records every command and delegates behavior to handle.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []recordedCall
	handle func(name string, args []string) ([]byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{name: name, args: args})
	f.mu.Unlock()
	if f.handle == nil {
		return nil, nil
	}
	return f.handle(name, args)
}

func (f *fakeRunner) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// firstIndex returns the position of the first call to name, or -1.
func (f *fakeRunner) firstIndex(name string) int {
	for i, c := range f.recorded() {
		if c.name == name {
			return i
		}
	}
	return -1
}

func (f *fakeRunner) countCalls(name string) int {
	n := 0
	for _, c := range f.recorded() {
		if c.name == name {
			n++
		}
	}
	return n
}

func hasArg(args []string, want string) bool {
	return slices.Contains(args, want)
}

// isDBCheck distinguishes the database readiness probe (--no-wait) from
// the vswitchd probe; both run ovs-vsctl.
func isDBCheck(name string, args []string) bool {
	return name == "ovs-vsctl" && hasArg(args, "--no-wait")
}

func isVswitchdCheck(name string, args []string) bool {
	return name == "ovs-vsctl" && !hasArg(args, "--no-wait")
}
