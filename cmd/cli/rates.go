package main

import (
	"github.com/spf13/cobra"
)

func newRatesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Fetch and show the exchange rates for the offered currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			a, err := loadRates(cmd.Context(), cfg, root.offline)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			store := a.Deps.RateStore
			return renderRates(cmd.OutOrStdout(), store.Status(), store.Current().Rates, a.Deps.Currencies)
		},
	}
}
