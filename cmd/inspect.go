package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/altnet-labs/vpsnetd/netsync"
)

var inspectFormat string

type vpsDetails struct {
	VLAN     uint16   `json:"vlan"`
	Link     string   `json:"link,omitempty"`
	V4Addr   string   `json:"v4_addr"`
	V4Public []string `json:"v4_public,omitempty"`
	V6Prefix string   `json:"v6_prefix"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "show the configured guest networks and their live links",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// link names are best effort, inspect should work unprivileged
		state, err := netsync.Read(int(cfg.RTProto))
		if err != nil {
			log.Debugf("no live link state: %v", err)
			state = &netsync.State{}
		}

		details := make([]vpsDetails, 0, len(cfg.VPS))
		for _, vps := range cfg.VPS {
			d := vpsDetails{
				VLAN:     vps.VLAN,
				V4Addr:   vps.V4Addr.String(),
				V6Prefix: vps.V6Prefix.String() + "/64",
			}
			for _, ip := range vps.V4Public {
				d.V4Public = append(d.V4Public, ip.String())
			}
			for _, l := range state.Links {
				if l.VLAN == int(vps.VLAN) {
					d.Link = l.Name
					break
				}
			}
			details = append(details, d)
		}

		if inspectFormat == "json" {
			b, err := json.MarshalIndent(details, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"VLAN", "Link", "IPv4 Address", "Public IPv4", "IPv6 Prefix"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, d := range details {
			link := d.Link
			if link == "" {
				link = "-"
			}
			table.Append([]string{
				fmt.Sprintf("%d", d.VLAN),
				link,
				d.V4Addr,
				strings.Join(d.V4Public, ", "),
				d.V6Prefix,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "table",
		"output format; one of [table, json]")
}
