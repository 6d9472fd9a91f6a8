package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/ratecard"
	"github.com/amirasaad/pricer/pkg/ratestore"
	"github.com/amirasaad/pricer/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	warn  = color.New(color.FgYellow, color.Bold)
	faint = color.New(color.Faint)
)

func renderQuote(w io.Writer, view session.View, registry *currency.Registry) error {
	rows := make([][]string, 0, len(view.Items))
	for _, item := range view.Items {
		country, seniority := item.Country, item.Seniority
		if country == "" {
			country = "?"
		}
		if seniority == "" {
			seniority = "?"
		}
		rows = append(rows, []string{
			item.Name,
			country,
			seniority,
			number(item.HoursPerWeek),
			number(item.Weeks),
			number(item.Allocation) + "%",
			registry.Format(item.HourlyRateDisplay, view.DisplayCurrency),
			registry.Format(item.CostDisplay, view.DisplayCurrency),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Consultant", "Country", "Seniority", "h/week", "Weeks", "Alloc", "Rate", "Cost").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, titleStyle.Render("Project quote")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	total := registry.Format(view.TotalDisplay, view.DisplayCurrency)
	if _, err := fmt.Fprintln(w, totalStyle.Render("Total: "+total)); err != nil {
		return err
	}
	if view.DisplayCurrency != view.BaseCurrency {
		_, _ = faint.Fprintf(w, "%s at 1 %s = %s %s\n",
			registry.Format(view.TotalBase, view.BaseCurrency),
			view.BaseCurrency, number(view.Rates.Rate), view.DisplayCurrency)
	}
	renderRateInfo(w, view.Rates.Source, view.Rates.RateTime, view.Rates.Fallback, view.Rates.Error)
	if view.Incomplete {
		_, _ = warn.Fprintln(w, "Some consultants have no country or seniority; they are priced at 0.")
	}
	return nil
}

func renderRateInfo(w io.Writer, source string, rateTime time.Time, fallback bool, cause string) {
	_, _ = faint.Fprintf(w, "Rates: %s, as of %s\n", source, rateTime.Format(time.DateOnly))
	if fallback {
		msg := "Using static fallback rates"
		if cause != "" {
			msg += ": " + cause
		}
		_, _ = warn.Fprintln(w, msg)
	}
}

func renderRateCard(w io.Writer, card *ratecard.Card, registry *currency.Registry) error {
	seniorities := card.Seniorities()
	headers := append([]string{"Country"}, seniorities...)
	rows := make([][]string, 0)
	for _, country := range card.Countries() {
		row := []string{country}
		for _, seniority := range seniorities {
			if card.Has(country, seniority) {
				row = append(row, registry.Format(card.Lookup(country, seniority), registry.Base()))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, titleStyle.Render("Hourly rates ("+registry.Base()+")")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func renderRates(w io.Writer, status ratestore.Status, rates map[string]float64, registry *currency.Registry) error {
	rows := make([][]string, 0, len(rates))
	for _, code := range registry.Codes() {
		rate, ok := rates[code]
		value := "-"
		if ok {
			value = number(rate)
		}
		rows = append(rows, []string{code, value})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Currency", "1 "+status.Base+" =").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	renderRateInfo(w, status.Source, status.RateTime, status.Fallback, status.Error)
	return nil
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
