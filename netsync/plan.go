package netsync

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/altnet-labs/vpsnetd/config"
)

// Op is the kind of a planned netlink change.
type Op string

const (
	OpAddLink  Op = "add-link"
	OpDelLink  Op = "del-link"
	OpAddAddr  Op = "add-addr"
	OpDelAddr  Op = "del-addr"
	OpAddRoute Op = "add-route"
	OpDelRoute Op = "del-route"
)

// Action is a single netlink change. Adds reference their target link
// by name (the link may not exist yet), deletes by interface index.
type Action struct {
	Op    Op
	Link  string
	Index int
	VLAN  int
	Dst   *net.IPNet
}

func (a Action) String() string {
	switch a.Op {
	case OpAddLink:
		return fmt.Sprintf("%s %s vlan %d", a.Op, a.Link, a.VLAN)
	case OpDelLink:
		return fmt.Sprintf("%s #%d", a.Op, a.Index)
	case OpAddAddr, OpAddRoute:
		return fmt.Sprintf("%s %s on %s", a.Op, a.Dst, a.Link)
	default:
		return fmt.Sprintf("%s %s on #%d", a.Op, a.Dst, a.Index)
	}
}

// Iface pairs a reconciled link name with the guest definition it
// serves. The slice produced by Plan is the rendering context for the
// kea and radvd configs and preserves config order.
type Iface struct {
	Name string      `json:"name"`
	VPS  *config.VPS `json:"vps"`
}

// Plan compares the desired guest list with a kernel state snapshot
// and returns the changes needed to converge, removals first. Links
// are matched to guests by VLAN id; a guest without a link gets a
// fresh vpsN name one past the highest in use.
func Plan(vpses []config.VPS, state *State) ([]Action, []Iface) {
	var (
		keepLinks  []int
		keepRoutes []Route
		delAddrs   []Addr
		adds       []Action
		actions    []Action
		ifaces     []Iface
	)

	nextID := 1
	for _, l := range state.Links {
		if n, err := strconv.Atoi(strings.TrimPrefix(l.Name, LinkPrefix)); err == nil && n >= nextID {
			nextID = n + 1
		}
	}

	for i := range vpses {
		vps := &vpses[i]

		link := findByVLAN(state.Links, int(vps.VLAN))
		if link == nil {
			name := fmt.Sprintf("%s%d", LinkPrefix, nextID)
			nextID++
			ifaces = append(ifaces, Iface{Name: name, VPS: vps})

			adds = append(adds, Action{Op: OpAddLink, Link: name, VLAN: int(vps.VLAN)})
			adds = append(adds, Action{Op: OpAddAddr, Link: name, Dst: prefix4(vps.V4Addr, 31)})
			for _, pub := range vps.V4Public {
				adds = append(adds, Action{Op: OpAddRoute, Link: name, Dst: prefix4(pub, 32)})
			}
			adds = append(adds, Action{Op: OpAddRoute, Link: name, Dst: prefix6(vps.V6Prefix, 64)})
			continue
		}

		keepLinks = append(keepLinks, link.Index)
		ifaces = append(ifaces, Iface{Name: link.Name, VPS: vps})

		foundV4Addr := false
		for _, a := range state.Addrs {
			if a.LinkIndex != link.Index || a.IP.To4() == nil {
				continue
			}
			if a.IP.Equal(vps.V4Addr) && a.PrefixLen == 31 {
				foundV4Addr = true
			} else {
				delAddrs = append(delAddrs, a)
			}
		}
		if !foundV4Addr {
			adds = append(adds, Action{Op: OpAddAddr, Link: link.Name, Dst: prefix4(vps.V4Addr, 31)})
		}

		var foundPublic []net.IP
		foundV6Route := false
		for _, r := range state.Routes {
			if r.LinkIndex != link.Index {
				continue
			}
			ones, _ := r.Dst.Mask.Size()
			if v4 := r.Dst.IP.To4(); v4 != nil {
				if ones == 32 && containsIP(vps.V4Public, v4) {
					keepRoutes = append(keepRoutes, r)
					foundPublic = append(foundPublic, v4)
				}
			} else if ones == 64 && r.Dst.IP.Equal(vps.V6Prefix) {
				keepRoutes = append(keepRoutes, r)
				foundV6Route = true
			}
		}
		for _, pub := range vps.V4Public {
			if !containsIP(foundPublic, pub) {
				adds = append(adds, Action{Op: OpAddRoute, Link: link.Name, Dst: prefix4(pub, 32)})
			}
		}
		if !foundV6Route {
			adds = append(adds, Action{Op: OpAddRoute, Link: link.Name, Dst: prefix6(vps.V6Prefix, 64)})
		}
	}

	var delLinks []int
	for _, l := range state.Links {
		if !slices.Contains(keepLinks, l.Index) {
			actions = append(actions, Action{Op: OpDelLink, Index: l.Index})
			delLinks = append(delLinks, l.Index)
		}
	}

	// routes on links that go away die with the link
	for _, r := range state.Routes {
		if !containsRoute(keepRoutes, r) && !slices.Contains(delLinks, r.LinkIndex) {
			actions = append(actions, Action{Op: OpDelRoute, Index: r.LinkIndex, Dst: r.Dst})
		}
	}

	for _, a := range delAddrs {
		actions = append(actions, Action{
			Op:    OpDelAddr,
			Index: a.LinkIndex,
			Dst:   &net.IPNet{IP: a.IP, Mask: net.CIDRMask(a.PrefixLen, 32)},
		})
	}

	return append(actions, adds...), ifaces
}

// Preview returns the interface list Plan would produce on a host
// with no managed links, without planning any kernel changes.
func Preview(vpses []config.VPS) []Iface {
	_, ifaces := Plan(vpses, &State{})
	return ifaces
}

func findByVLAN(links []Link, vlan int) *Link {
	for i := range links {
		if links[i].VLAN == vlan {
			return &links[i]
		}
	}
	return nil
}

func containsIP(ips []net.IP, ip net.IP) bool {
	for _, i := range ips {
		if i.Equal(ip) {
			return true
		}
	}
	return false
}

func containsRoute(routes []Route, r Route) bool {
	for _, k := range routes {
		if k.LinkIndex == r.LinkIndex && k.Dst.String() == r.Dst.String() {
			return true
		}
	}
	return false
}

func prefix4(ip net.IP, bits int) *net.IPNet {
	return &net.IPNet{IP: ip.To4(), Mask: net.CIDRMask(bits, 32)}
}

func prefix6(ip net.IP, bits int) *net.IPNet {
	return &net.IPNet{IP: ip.To16(), Mask: net.CIDRMask(bits, 128)}
}
