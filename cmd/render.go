package cmd

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/altnet-labs/vpsnetd/netsync"
	"github.com/altnet-labs/vpsnetd/rendering"
	"github.com/altnet-labs/vpsnetd/utils"
)

var outDir string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "render the kea and radvd configs without touching the kernel",
	Long: `Render the kea and radvd configs for the configured layout, naming
interfaces the way a fresh host would allocate them, and print them to
stdout or write them into a directory.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r, err := rendering.New(templateDir)
		if err != nil {
			return err
		}

		ifaces := netsync.Preview(cfg.VPS)
		kea, err := r.Kea(ifaces)
		if err != nil {
			return err
		}
		radvd, err := r.Radvd(ifaces)
		if err != nil {
			return err
		}

		if outDir == "" {
			fmt.Printf("# kea.conf\n%s\n# radvd.conf\n%s", kea, radvd)
			return nil
		}

		for _, f := range []struct {
			name string
			data []byte
		}{{"kea.conf", kea}, {"radvd.conf", radvd}} {
			p := filepath.Join(outDir, f.name)
			if err := utils.CreateFile(p, string(f.data)); err != nil {
				return err
			}
			log.Infof("wrote %s", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&templateDir, "templates", "",
		"directory with *.tmpl files overriding the built-in config templates")
	renderCmd.Flags().StringVarP(&outDir, "out", "o", "",
		"directory to write kea.conf and radvd.conf into; stdout when empty")
}
