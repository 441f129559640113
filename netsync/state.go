package netsync

import (
	"fmt"
	"net"
	"strings"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// LinkPrefix is the name prefix of every VLAN link the daemon owns.
const LinkPrefix = "vps"

// Link is a VLAN link the daemon manages.
type Link struct {
	Name   string
	Index  int
	Parent int
	VLAN   int
}

// Addr is a universe-scoped address assigned to a link.
type Addr struct {
	LinkIndex int
	IP        net.IP
	PrefixLen int
}

// Route is a route tagged with the daemon's routing protocol id.
type Route struct {
	LinkIndex int
	Dst       *net.IPNet
}

// State is a snapshot of the kernel state the daemon cares about.
type State struct {
	Links  []Link
	Addrs  []Addr
	Routes []Route
}

// Read snapshots the managed VLAN links, their global addresses and
// all routes carrying the given routing protocol id.
func Read(rtProto int) (*State, error) {
	s := &State{}

	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	for _, l := range links {
		vlan, ok := l.(*netlink.Vlan)
		if !ok || !strings.HasPrefix(vlan.Attrs().Name, LinkPrefix) {
			continue
		}
		s.Links = append(s.Links, Link{
			Name:   vlan.Attrs().Name,
			Index:  vlan.Attrs().Index,
			Parent: vlan.Attrs().ParentIndex,
			VLAN:   vlan.VlanId,
		})
	}

	addrs, err := netlink.AddrList(nil, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	for _, a := range addrs {
		if a.Scope != unix.RT_SCOPE_UNIVERSE {
			continue
		}
		ones, _ := a.Mask.Size()
		s.Addrs = append(s.Addrs, Addr{
			LinkIndex: a.LinkIndex,
			IP:        a.IP,
			PrefixLen: ones,
		})
	}

	for _, family := range []int{netlink.FAMILY_V4, netlink.FAMILY_V6} {
		filter := &netlink.Route{Protocol: netlink.RouteProtocol(rtProto)}
		routes, err := netlink.RouteListFiltered(family, filter, netlink.RT_FILTER_PROTOCOL)
		if err != nil {
			return nil, fmt.Errorf("failed to list routes: %w", err)
		}
		for _, r := range routes {
			if r.Dst == nil {
				continue
			}
			s.Routes = append(s.Routes, Route{LinkIndex: r.LinkIndex, Dst: r.Dst})
		}
	}

	return s, nil
}

// LinkIndexByName resolves a link name to its interface index.
func LinkIndexByName(name string) (int, error) {
	l, err := netlink.LinkByName(name)
	if err != nil {
		return 0, fmt.Errorf("failed to lookup link %q: %w", name, err)
	}
	return l.Attrs().Index, nil
}
