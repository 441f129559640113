package netsync

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/altnet-labs/vpsnetd/config"
)

func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected result (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func ip4(s string) net.IP { return net.ParseIP(s).To4() }

func cidr4(s string, bits int) *net.IPNet {
	return &net.IPNet{IP: ip4(s), Mask: net.CIDRMask(bits, 32)}
}

func cidr6(s string, bits int) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(bits, 128)}
}

func names(ifaces []Iface) []string {
	var n []string
	for _, i := range ifaces {
		n = append(n, i.Name)
	}
	return n
}

func TestPlanFreshHost(t *testing.T) {
	vpses := []config.VPS{
		{VLAN: 101, V4Addr: net.ParseIP("10.0.0.2"), V6Prefix: net.ParseIP("2001:db8:1::")},
		{VLAN: 102, V4Addr: net.ParseIP("10.0.0.4"),
			V4Public: config.V4List{net.ParseIP("192.0.2.10"), net.ParseIP("192.0.2.11")},
			V6Prefix: net.ParseIP("2001:db8:2::")},
	}

	actions, ifaces := Plan(vpses, &State{})

	assertEqual(t, names(ifaces), []string{"vps1", "vps2"})
	assertEqual(t, actions, []Action{
		{Op: OpAddLink, Link: "vps1", VLAN: 101},
		{Op: OpAddAddr, Link: "vps1", Dst: cidr4("10.0.0.2", 31)},
		{Op: OpAddRoute, Link: "vps1", Dst: cidr6("2001:db8:1::", 64)},
		{Op: OpAddLink, Link: "vps2", VLAN: 102},
		{Op: OpAddAddr, Link: "vps2", Dst: cidr4("10.0.0.4", 31)},
		{Op: OpAddRoute, Link: "vps2", Dst: cidr4("192.0.2.10", 32)},
		{Op: OpAddRoute, Link: "vps2", Dst: cidr4("192.0.2.11", 32)},
		{Op: OpAddRoute, Link: "vps2", Dst: cidr6("2001:db8:2::", 64)},
	})
}

func TestPlanConverged(t *testing.T) {
	vpses := []config.VPS{
		{VLAN: 101, V4Addr: net.ParseIP("10.0.0.2"),
			V4Public: config.V4List{net.ParseIP("192.0.2.10")},
			V6Prefix: net.ParseIP("2001:db8:1::")},
	}
	state := &State{
		Links: []Link{{Name: "vps4", Index: 10, Parent: 2, VLAN: 101}},
		Addrs: []Addr{{LinkIndex: 10, IP: ip4("10.0.0.2"), PrefixLen: 31}},
		Routes: []Route{
			{LinkIndex: 10, Dst: cidr4("192.0.2.10", 32)},
			{LinkIndex: 10, Dst: cidr6("2001:db8:1::", 64)},
		},
	}

	actions, ifaces := Plan(vpses, state)

	if len(actions) != 0 {
		t.Errorf("expected no actions on a converged host, got %v", actions)
	}
	// the existing link name survives even though a fresh host would
	// have named it vps1
	assertEqual(t, names(ifaces), []string{"vps4"})
}

func TestPlanDriftRepair(t *testing.T) {
	vpses := []config.VPS{
		{VLAN: 101, V4Addr: net.ParseIP("10.0.0.2"),
			V4Public: config.V4List{net.ParseIP("192.0.2.10")},
			V6Prefix: net.ParseIP("2001:db8:1::")},
	}
	state := &State{
		Links:  []Link{{Name: "vps1", Index: 3, Parent: 2, VLAN: 101}},
		Addrs:  []Addr{{LinkIndex: 3, IP: ip4("10.9.9.9"), PrefixLen: 31}},
		Routes: []Route{{LinkIndex: 3, Dst: cidr4("198.51.100.5", 32)}},
	}

	actions, _ := Plan(vpses, state)

	assertEqual(t, actions, []Action{
		{Op: OpDelRoute, Index: 3, Dst: cidr4("198.51.100.5", 32)},
		{Op: OpDelAddr, Index: 3, Dst: cidr4("10.9.9.9", 31)},
		{Op: OpAddAddr, Link: "vps1", Dst: cidr4("10.0.0.2", 31)},
		{Op: OpAddRoute, Link: "vps1", Dst: cidr4("192.0.2.10", 32)},
		{Op: OpAddRoute, Link: "vps1", Dst: cidr6("2001:db8:1::", 64)},
	})
}

func TestPlanRemovesStaleLink(t *testing.T) {
	vpses := []config.VPS{
		{VLAN: 101, V4Addr: net.ParseIP("10.0.0.2"), V6Prefix: net.ParseIP("2001:db8:1::")},
	}
	state := &State{
		Links: []Link{
			{Name: "vps1", Index: 3, Parent: 2, VLAN: 101},
			{Name: "vps2", Index: 5, Parent: 2, VLAN: 102},
		},
		Addrs: []Addr{
			{LinkIndex: 3, IP: ip4("10.0.0.2"), PrefixLen: 31},
			{LinkIndex: 5, IP: ip4("10.0.0.4"), PrefixLen: 31},
		},
		Routes: []Route{
			{LinkIndex: 3, Dst: cidr6("2001:db8:1::", 64)},
			{LinkIndex: 5, Dst: cidr4("192.0.2.10", 32)},
		},
	}

	actions, ifaces := Plan(vpses, state)

	// the stale route and address on vps2 die with the link, only the
	// link removal is planned
	assertEqual(t, actions, []Action{{Op: OpDelLink, Index: 5}})
	assertEqual(t, names(ifaces), []string{"vps1"})
}

func TestPlanNameAllocation(t *testing.T) {
	vpses := []config.VPS{
		{VLAN: 300, V4Addr: net.ParseIP("10.0.0.8"), V6Prefix: net.ParseIP("2001:db8:8::")},
	}
	state := &State{
		Links: []Link{{Name: "vps7", Index: 2, Parent: 1, VLAN: 200}},
	}

	actions, ifaces := Plan(vpses, state)

	assertEqual(t, names(ifaces), []string{"vps8"})
	assertEqual(t, actions, []Action{
		{Op: OpDelLink, Index: 2},
		{Op: OpAddLink, Link: "vps8", VLAN: 300},
		{Op: OpAddAddr, Link: "vps8", Dst: cidr4("10.0.0.8", 31)},
		{Op: OpAddRoute, Link: "vps8", Dst: cidr6("2001:db8:8::", 64)},
	})
}

func TestPreviewNamesSequentially(t *testing.T) {
	vpses := []config.VPS{
		{VLAN: 300, V4Addr: net.ParseIP("10.0.0.8"), V6Prefix: net.ParseIP("2001:db8:8::")},
		{VLAN: 200, V4Addr: net.ParseIP("10.0.0.6"), V6Prefix: net.ParseIP("2001:db8:6::")},
	}
	assertEqual(t, names(Preview(vpses)), []string{"vps1", "vps2"})
}
