package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/altnet-labs/vpsnetd/daemon"
	"github.com/altnet-labs/vpsnetd/utils"
)

var (
	templateDir   string
	keaPath       string
	radvdPath     string
	keaConfPath   string
	radvdConfPath string
	interval      time.Duration
	settle        time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "reconcile guest interfaces and supervise kea and radvd",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if templateDir != "" && !utils.FileOrDirExists(templateDir) {
			return fmt.Errorf("template directory %s does not exist", templateDir)
		}

		d, err := daemon.New(cfg, daemon.Options{
			ConfigPath:    cfgPath,
			TemplateDir:   templateDir,
			KeaPath:       keaPath,
			RadvdPath:     radvdPath,
			KeaConfPath:   keaConfPath,
			RadvdConfPath: radvdConfPath,
			Interval:      interval,
			Settle:        settle,
		})
		if err != nil {
			return err
		}

		ctx, cancel := signalHandledContext()
		defer cancel()

		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&templateDir, "templates", "",
		"directory with *.tmpl files overriding the built-in config templates")
	runCmd.Flags().StringVar(&keaPath, "kea-path", "kea-dhcp4", "kea-dhcp4 binary")
	runCmd.Flags().StringVar(&radvdPath, "radvd-path", "radvd", "radvd binary")
	runCmd.Flags().StringVar(&keaConfPath, "kea-conf", "",
		"where to write the rendered kea config; a temp file when empty")
	runCmd.Flags().StringVar(&radvdConfPath, "radvd-conf", "",
		"where to write the rendered radvd config; a temp file when empty")
	runCmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "reconcile interval")
	runCmd.Flags().DurationVar(&settle, "settle", 10*time.Second,
		"delay between applying changes and reloading kea/radvd")
}
