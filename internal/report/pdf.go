package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the summary, the chart table and the readings table.
// Text is translated to cp1252 for the core fonts; runes outside it are
// dropped.
func WritePDF(w io.Writer, r Report, opts ...Option) error {
	o := buildOptions(opts)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "GasControl Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Last %d days: %d readings, %d gasometers, %s per day",
		r.Window.Days, r.Window.Readings, r.Window.Gasometers, r.Window.AverageLabel()))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Chart range: %s", rangeLabel(r.DateRange))))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Consumption (m3)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, p := range r.Chart {
		pdf.CellFormat(40, 6, tr(p.Date), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, formatValue(p.Value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 6, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Gasometer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Consumption (m3)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Periodicity", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	bar := newBar(o, len(r.Readings), "readings")
	for _, row := range r.Readings {
		pdf.CellFormat(20, 6, strconv.Itoa(row.ID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, tr(row.GasometerLabel), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, tr(row.Date), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, formatValue(row.Consumption.Float64()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, tr(string(row.Periodicity)), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
