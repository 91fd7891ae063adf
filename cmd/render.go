package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/views"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderDashboard(w io.Writer, dash *views.Dashboard) error {
	stats := dash.Summary()

	tw := newTable(w)
	fmt.Fprintf(tw, "Last %d days\t\n", stats.Days)
	fmt.Fprintf(tw, "  Readings\t%d\n", stats.Readings)
	fmt.Fprintf(tw, "  Gasometers\t%d\n", stats.Gasometers)
	fmt.Fprintf(tw, "  Average per day\t%s\n", stats.AverageLabel())
	if err := tw.Flush(); err != nil {
		return err
	}

	r := dash.DateRange()
	if r.Active() {
		fmt.Fprintf(w, "\nConsumption %s to %s\n", r.Start, r.End)
	} else {
		fmt.Fprintln(w, "\nConsumption, all dates")
	}

	chart := dash.Chart()
	if len(chart) == 0 {
		fmt.Fprintln(w, "No readings.")
		return nil
	}
	tw = newTable(w)
	fmt.Fprintln(tw, "DATE\tCONSUMPTION (m³)")
	for _, p := range chart {
		fmt.Fprintf(tw, "%s\t%s\n", p.Date, strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
	return tw.Flush()
}

func renderGasometers(w io.Writer, view *views.GasometersView) error {
	page := view.Page()
	if len(page) == 0 {
		fmt.Fprintln(w, "No gasometers found.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCODE\tAPARTMENT")
	for _, g := range page {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Code, g.ApartmentLabel())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderPager(w, view.CurrentPage(), view.TotalPages(), len(view.Filtered()))
}

func renderGasometer(w io.Writer, g models.Gasometer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%d\n", g.ID)
	fmt.Fprintf(tw, "Code\t%s\n", g.Code)
	fmt.Fprintf(tw, "Apartment\t%s\n", g.ApartmentLabel())
	return tw.Flush()
}

func renderReadings(w io.Writer, view *views.ReadingsView, index *views.GasometerIndex) error {
	page := view.Page()
	if len(page) == 0 {
		fmt.Fprintln(w, "No readings found.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tGASOMETER\tDATE\tCONSUMPTION (m³)\tPERIODICITY")
	for _, r := range page {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, index.Label(r.Gasometer), r.Date, r.Consumption, r.Periodicity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return renderPager(w, view.CurrentPage(), view.TotalPages(), len(view.Filtered()))
}

func renderReading(w io.Writer, r models.Reading, index *views.GasometerIndex) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%d\n", r.ID)
	fmt.Fprintf(tw, "Gasometer\t%s (#%d)\n", index.Label(r.Gasometer), r.Gasometer)
	fmt.Fprintf(tw, "Date\t%s\n", r.Date)
	fmt.Fprintf(tw, "Consumption (m³)\t%s\n", r.Consumption)
	fmt.Fprintf(tw, "Periodicity\t%s\n", r.Periodicity)
	return tw.Flush()
}

func renderPager(w io.Writer, page, total, count int) error {
	_, err := fmt.Fprintf(w, "\nPage %d of %d (%d items)\n", page, total, count)
	return err
}
