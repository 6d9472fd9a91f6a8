// Package export renders a priced view as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/amirasaad/pricer/pkg/session"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the quote is written to.
const SheetName = "Quote"

var header = []any{
	"Consultant", "Country", "Seniority", "Hours/week", "Weeks", "Allocation %",
	"Hourly rate", "Cost",
}

// WriteQuote writes view as an XLSX workbook to w. Rates and costs are in
// the display currency; base totals are listed below the items.
func WriteQuote(w io.Writer, view session.View) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	money, err := xl.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := xl.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := xl.SetCellStyle(SheetName, "A1", "H1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, item := range view.Items {
		record := []any{
			item.Name,
			item.Country,
			item.Seniority,
			item.HoursPerWeek,
			item.Weeks,
			item.Allocation,
			item.HourlyRateDisplay,
			item.CostDisplay,
		}
		if err := setRow(xl, row, record); err != nil {
			return err
		}
		row++
	}
	if row > 2 {
		if err := xl.SetCellStyle(SheetName, "G2", cell(8, row-1), money); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	row++
	summary := [][]any{
		{"Total (" + view.DisplayCurrency + ")", view.TotalDisplay},
		{"Total (" + view.BaseCurrency + ")", view.TotalBase},
		{"Exchange rate", view.Rates.Rate},
		{"Rate source", view.Rates.Source},
		{"Rates as of", view.Rates.RateTime.Format(time.DateOnly)},
	}
	if view.Rates.Fallback {
		summary = append(summary, []any{"Note", "Static fallback rates: " + view.Rates.Error})
	}
	first := row
	for _, record := range summary {
		if err := setRow(xl, row, record); err != nil {
			return err
		}
		row++
	}
	if err := xl.SetCellStyle(SheetName, cell(1, first), cell(1, row-1), bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	if err := xl.SetCellStyle(SheetName, cell(2, first), cell(2, first+1), money); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}
	if err := xl.SetColWidth(SheetName, "A", "H", 16); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := xl.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(xl *excelize.File, row int, record []any) error {
	if err := xl.SetSheetRow(SheetName, cell(1, row), &record); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
