package main

import (
	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/exchange"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/spf13/cobra"
)

func newRateCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratecard",
		Short: "Show the hourly rate card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := currency.NewRegistry(exchange.BaseCurrency, exchange.BaseCurrency)
			if err != nil {
				return err
			}
			return renderRateCard(cmd.OutOrStdout(), ratecard.Default, registry)
		},
	}
}
