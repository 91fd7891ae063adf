package report

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	chartSheet    = "Chart"
	readingsSheet = "Readings"
)

// WriteXLSX writes the Summary, Chart and Readings sheets to w.
func WriteXLSX(w io.Writer, r Report, opts ...Option) error {
	o := buildOptions(opts)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{chartSheet, readingsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	summary := [][]any{
		{"GasControl report"},
		{},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Window (days)", r.Window.Days},
		{"Readings", r.Window.Readings},
		{"Gasometers", r.Window.Gasometers},
		{"Average per day", r.Window.AverageLabel()},
		{"Chart range", rangeLabel(r.DateRange)},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := setRow(f, chartSheet, 1, []any{"Date", "Consumption (m³)"}); err != nil {
		return err
	}
	for i, p := range r.Chart {
		if err := setRow(f, chartSheet, i+2, []any{p.Date, cellValue(p.Value)}); err != nil {
			return err
		}
	}

	header := []any{"ID", "Gasometer", "Date", "Consumption (m³)", "Periodicity"}
	if err := setRow(f, readingsSheet, 1, header); err != nil {
		return err
	}
	bar := newBar(o, len(r.Readings), "readings")
	for i, row := range r.Readings {
		values := []any{
			row.ID,
			row.GasometerLabel,
			row.Date,
			cellValue(row.Consumption.Float64()),
			string(row.Periodicity),
		}
		if err := setRow(f, readingsSheet, i+2, values); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// cellValue keeps numbers numeric; NaN has no spreadsheet representation.
func cellValue(v float64) any {
	if math.IsNaN(v) {
		return "NaN"
	}
	return v
}
