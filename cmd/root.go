package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/altnet-labs/vpsnetd/config"
)

var (
	debug    bool
	logLevel string
	cfgPath  string
	envFile  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:               "vpsnetd",
	Short:             "manage VPS host VLAN interfaces and their DHCP/RA daemons",
	PersistentPreRunE: preRunFn,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "/etc/vpsnetd/config.json",
		"path to the network layout file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"logging level; one of [trace, debug, info, warning, error, fatal]")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"dotenv file loaded before expanding env vars in the layout file")
}

func preRunFn(_ *cobra.Command, _ []string) error {
	switch {
	case debug:
		log.SetLevel(log.DebugLevel)
	default:
		l, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(l)
	}

	// keep stdout clean for json outputs
	log.SetOutput(os.Stderr)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	return nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}
