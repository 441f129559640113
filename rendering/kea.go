package rendering

import "encoding/json"

// KeaConfig mirrors the slice of the Kea DHCP4 configuration schema
// that the kea template produces.
type KeaConfig struct {
	Dhcp4 Dhcp4 `json:"Dhcp4"`
}

type Dhcp4 struct {
	ValidLifetime    int              `json:"valid-lifetime"`
	RenewTimer       int              `json:"renew-timer"`
	RebindTimer      int              `json:"rebind-timer"`
	LeaseDatabase    LeaseDatabase    `json:"lease-database"`
	InterfacesConfig InterfacesConfig `json:"interfaces-config"`
	OptionData       []Option         `json:"option-data"`
	SharedNetworks   []SharedNetwork  `json:"shared-networks"`
}

type LeaseDatabase struct {
	Type    string `json:"type"`
	Persist bool   `json:"persist"`
	Name    string `json:"name"`
}

type InterfacesConfig struct {
	Interfaces []string `json:"interfaces"`
}

type Option struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type SharedNetwork struct {
	Name      string   `json:"name"`
	Interface string   `json:"interface"`
	Subnet4   []Subnet `json:"subnet4"`
}

type Subnet struct {
	Subnet string `json:"subnet"`
	Pools  []Pool `json:"pools"`
}

type Pool struct {
	Pool string `json:"pool"`
}

// DecodeKea parses a rendered kea config back into the typed model.
func DecodeKea(b []byte) (*KeaConfig, error) {
	c := &KeaConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}
