// Package netprep does the minimal interface preparation an init process
// owes its payload: a loopback that is up, and link diagnostics for the
// preflight check.
package netprep

// Link is a reduced view of a network interface for diagnostics.
type Link struct {
	Name string
	Type string
	Up   bool
	MTU  int
}
