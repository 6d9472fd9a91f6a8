package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/amirasaad/pricer/pkg/export"
	"github.com/amirasaad/pricer/pkg/pricing"
	"github.com/amirasaad/pricer/pkg/session"
	"github.com/spf13/cobra"
)

func newQuoteCmd(root *rootOptions) *cobra.Command {
	var (
		file     string
		currency string
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price the consultants listed in a TOML project file",
		Example: `  pricer quote -f project.toml
  pricer quote -f project.toml --currency USD --xlsx quote.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := readProject(file)
			if err != nil {
				return err
			}
			if currency != "" {
				project.Currency = currency
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			a, err := loadRates(cmd.Context(), cfg, root.offline)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			s := session.New(a.Deps.RateCard, a.Deps.RateStore, a.Deps.Currencies, session.WithLogger(a.Deps.Logger))
			if err := project.apply(s); err != nil {
				return err
			}
			if project.Currency != "" {
				if err := s.SetSelectedCurrency(cmd.Context(), project.Currency); err != nil {
					return err
				}
			}

			view, calcErr := s.Calculate()
			if errors.Is(calcErr, pricing.ErrIncompleteSelection) {
				view = s.ComputeView()
			}
			if err := renderQuote(cmd.OutOrStdout(), view, a.Deps.Currencies); err != nil {
				return err
			}
			if calcErr != nil {
				return calcErr
			}

			if xlsxPath != "" {
				if err := writeXLSX(xlsxPath, view); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Quote written to %s\n", xlsxPath) //nolint:errcheck
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "project file (TOML)")
	cmd.Flags().StringVar(&currency, "currency", "", "display currency, overrides the project file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the quote to this XLSX file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeXLSX(path string, view session.View) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteQuote(f, view)
}
