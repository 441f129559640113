package netsync

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// Apply executes planned actions in order, stopping at the first
// failure. parentIndex is the root interface new VLAN links hang off.
func Apply(rtProto, parentIndex int, actions []Action) error {
	for _, a := range actions {
		if err := apply(rtProto, parentIndex, a); err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
	}
	return nil
}

func apply(rtProto, parentIndex int, a Action) error {
	switch a.Op {
	case OpAddLink:
		attrs := netlink.NewLinkAttrs()
		attrs.Name = a.Link
		attrs.ParentIndex = parentIndex
		return netlink.LinkAdd(&netlink.Vlan{LinkAttrs: attrs, VlanId: a.VLAN})

	case OpDelLink:
		link, err := netlink.LinkByIndex(a.Index)
		if err != nil {
			return err
		}
		return netlink.LinkDel(link)

	case OpAddAddr:
		link, err := netlink.LinkByName(a.Link)
		if err != nil {
			return err
		}
		return netlink.AddrAdd(link, &netlink.Addr{IPNet: a.Dst})

	case OpDelAddr:
		link, err := netlink.LinkByIndex(a.Index)
		if err != nil {
			return err
		}
		return netlink.AddrDel(link, &netlink.Addr{IPNet: a.Dst})

	case OpAddRoute:
		link, err := netlink.LinkByName(a.Link)
		if err != nil {
			return err
		}
		return netlink.RouteAdd(&netlink.Route{
			LinkIndex: link.Attrs().Index,
			Dst:       a.Dst,
			Protocol:  netlink.RouteProtocol(rtProto),
		})

	case OpDelRoute:
		return netlink.RouteDel(&netlink.Route{
			LinkIndex: a.Index,
			Dst:       a.Dst,
			Protocol:  netlink.RouteProtocol(rtProto),
		})
	}

	return fmt.Errorf("unknown action %q", a.Op)
}
