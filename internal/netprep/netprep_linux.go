//go:build linux

package netprep

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// EnsureLoopbackUp brings lo up. Fresh network namespaces start with it
// down and a surprising number of tools quietly depend on it.
func EnsureLoopbackUp() error {
	lo, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("find loopback: %w", err)
	}
	if lo.Attrs().Flags&net.FlagUp != 0 {
		return nil
	}
	if err := netlink.LinkSetUp(lo); err != nil {
		return fmt.Errorf("set loopback up: %w", err)
	}
	return nil
}

// ListLinks returns the interfaces visible in this network namespace.
func ListLinks() ([]Link, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	out := make([]Link, 0, len(links))
	for _, l := range links {
		attrs := l.Attrs()
		out = append(out, Link{
			Name: attrs.Name,
			Type: l.Type(),
			Up:   attrs.Flags&net.FlagUp != 0,
			MTU:  attrs.MTU,
		})
	}
	return out, nil
}
