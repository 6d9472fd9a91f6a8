package main

import (
	"github.com/amirasaad/pricer/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	verbose bool
	offline bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "pricer",
		Short:        "Price consulting projects from the rate card",
		Long:         "pricer computes consultant costs from the rate card and converts totals into a display currency using live or fallback exchange rates.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at info level")
	rootCmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "use the fallback rates without contacting the provider")

	rootCmd.AddCommand(
		newQuoteCmd(opts),
		newRateCardCmd(),
		newRatesCmd(opts),
	)
	return rootCmd
}

// loadConfig loads configuration, quieting logs unless verbose.
func (o *rootOptions) loadConfig() (*config.App, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if !o.verbose {
		cfg.Log.Level = int(log.WarnLevel)
	}
	if o.offline {
		cfg.ExchangeRateCache.Backend = "none"
	}
	return cfg, nil
}
