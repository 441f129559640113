package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

// Config describes the desired network layout of a VPS host: one VLAN
// interface per guest on top of a single root interface, plus the
// routing protocol id used to tag every route the daemon owns.
type Config struct {
	RTProto   uint8  `json:"rt_proto"`
	Interface string `json:"interface"`
	VPS       []VPS  `json:"vps"`
}

// VPS is the network definition of a single guest.
type VPS struct {
	VLAN     uint16 `json:"vlan"`
	V4Addr   net.IP `json:"v4_addr"`
	V4Public V4List `json:"v4_public,omitempty"`
	V6Prefix net.IP `json:"v6_prefix"`
}

// V4List holds the public IPv4 addresses routed to a guest. On the
// wire it accepts either a single address or a list of addresses; it
// always marshals back as a list.
type V4List []net.IP

func (l *V4List) UnmarshalJSON(b []byte) error {
	// null means no public addresses
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var ips []net.IP
		if err := json.Unmarshal(b, &ips); err != nil {
			return err
		}
		*l = V4List(ips)
		return nil
	}

	var ip net.IP
	if err := json.Unmarshal(b, &ip); err != nil {
		return err
	}
	*l = V4List{ip}
	return nil
}

// Load reads, env-expands and decodes a config file, returning an
// error if the result does not describe a usable layout.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	b, err = envsubst.Bytes(b)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expand env vars in config file")
	}

	c := &Config{}
	if err := json.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := c.Verify(); err != nil {
		return nil, err
	}

	return c, nil
}

// Verify checks the semantic constraints the decoder can't express.
func (c *Config) Verify() error {
	if c.Interface == "" {
		return fmt.Errorf("root interface is not set")
	}

	seen := map[uint16]struct{}{}
	for i, vps := range c.VPS {
		if vps.VLAN < 1 || vps.VLAN > 4094 {
			return fmt.Errorf("vps #%d: vlan id %d is out of range 1-4094", i, vps.VLAN)
		}
		if _, ok := seen[vps.VLAN]; ok {
			return fmt.Errorf("vps #%d: duplicate vlan id %d", i, vps.VLAN)
		}
		seen[vps.VLAN] = struct{}{}

		if vps.V4Addr.To4() == nil {
			return fmt.Errorf("vps #%d (vlan %d): v4_addr %q is not an IPv4 address", i, vps.VLAN, vps.V4Addr)
		}
		for _, ip := range vps.V4Public {
			if ip.To4() == nil {
				return fmt.Errorf("vps #%d (vlan %d): public address %q is not an IPv4 address", i, vps.VLAN, ip)
			}
		}
		if vps.V6Prefix == nil || vps.V6Prefix.To4() != nil {
			return fmt.Errorf("vps #%d (vlan %d): v6_prefix %q is not an IPv6 address", i, vps.VLAN, vps.V6Prefix)
		}
	}

	return nil
}
