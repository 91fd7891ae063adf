// Package report exports a dashboard snapshot as an XLSX workbook or a PDF
// summary.
package report

import (
	"io"
	"math"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/query"
	"github.com/tejusbharadwaj/gascontrol/internal/views"
)

// Report is a point-in-time copy of the dashboard.
type Report struct {
	GeneratedAt time.Time
	Window      query.WindowStats
	DateRange   query.DateRange
	Chart       []models.ChartPoint
	Readings    []Row
}

// Row is a reading with its gasometer label resolved.
type Row struct {
	models.Reading
	GasometerLabel string
}

// Build snapshots d. Readings are the ones inside the chart date range.
func Build(d *views.Dashboard) Report {
	readings := d.Readings()
	rows := make([]Row, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, Row{Reading: r, GasometerLabel: d.Index().Label(r.Gasometer)})
	}
	return Report{
		GeneratedAt: d.Now().UTC(),
		Window:      d.Summary(),
		DateRange:   d.DateRange(),
		Chart:       d.Chart(),
		Readings:    rows,
	}
}

// Option customises an export.
type Option func(*exportOptions)

type exportOptions struct {
	progress io.Writer
}

// WithProgress draws a progress bar on w while rows are written.
func WithProgress(w io.Writer) Option {
	return func(o *exportOptions) { o.progress = w }
}

func buildOptions(opts []Option) exportOptions {
	o := exportOptions{progress: io.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newBar(o exportOptions, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// formatValue renders a consumption with three decimals, or "NaN".
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func rangeLabel(r query.DateRange) string {
	if !r.Active() {
		return "all dates"
	}
	return r.Start + " to " + r.End
}
