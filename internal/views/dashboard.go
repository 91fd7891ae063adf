package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// Dashboard holds the aggregate view: trailing window statistics over all
// readings and a chart over the date-range filtered readings.
type Dashboard struct {
	gasometers Lister[models.Gasometer]
	readings   Lister[models.Reading]
	opts       options

	mu            sync.Mutex
	window        int
	dateRange     query.DateRange
	gasometerList []models.Gasometer
	readingList   []models.Reading
}

func NewDashboard(gasometers Lister[models.Gasometer], readings Lister[models.Reading], opts ...Option) *Dashboard {
	return &Dashboard{
		gasometers:    gasometers,
		readings:      readings,
		opts:          buildOptions(opts),
		window:        query.DefaultWindow,
		gasometerList: []models.Gasometer{},
		readingList:   []models.Reading{},
	}
}

// Refresh fetches both collections independently. A failed fetch keeps the
// previous copy of that collection and raises an error toast.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if err := d.opts.gate.Require(); err != nil {
		return err
	}

	var errs []error

	gasometers, err := d.gasometers.List(ctx)
	if err != nil {
		d.opts.logger.WithFields(logrus.Fields{"resource": "gasometers"}).WithError(err).Error("Fetch failed")
		errs = append(errs, fmt.Errorf("gasometers: %w", err))
	} else {
		d.mu.Lock()
		d.gasometerList = gasometers
		d.mu.Unlock()
		if d.opts.index != nil {
			d.opts.index.Load(gasometers)
		}
	}

	readings, err := d.readings.List(ctx)
	if err != nil {
		d.opts.logger.WithFields(logrus.Fields{"resource": "readings"}).WithError(err).Error("Fetch failed")
		errs = append(errs, fmt.Errorf("readings: %w", err))
	} else {
		d.mu.Lock()
		d.readingList = readings
		d.mu.Unlock()
	}

	if len(errs) > 0 {
		d.opts.toasts.Error("Failed to fetch data")
	}
	return errors.Join(errs...)
}

// Toasts returns the dashboard's notification slot.
func (d *Dashboard) Toasts() *Toasts {
	return d.opts.toasts
}

// SetWindow selects the trailing window used by Summary.
func (d *Dashboard) SetWindow(days int) error {
	if !query.ValidWindow(days) {
		return fmt.Errorf("invalid window: %d", days)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.window = days
	return nil
}

func (d *Dashboard) Window() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// SetDateRange bounds the chart. The range applies only when both ends are
// set.
func (d *Dashboard) SetDateRange(start, end string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dateRange = query.DateRange{Start: start, End: end}
}

func (d *Dashboard) DateRange() query.DateRange {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dateRange
}

// Summary computes the trailing window statistics as of now.
func (d *Dashboard) Summary() query.WindowStats {
	d.mu.Lock()
	readings, window := d.readingList, d.window
	d.mu.Unlock()

	// window is validated by SetWindow, so this cannot fail.
	stats, _ := query.TrailingWindow(readings, window, d.opts.now())
	return stats
}

// Readings returns the readings inside the chart date range.
func (d *Dashboard) Readings() []models.Reading {
	d.mu.Lock()
	defer d.mu.Unlock()
	return query.Filter(d.readingList, query.InDateRange(d.dateRange))
}

// Chart recomputes the chart points from the current readings.
func (d *Dashboard) Chart() []models.ChartPoint {
	return query.ChartSeries(d.Readings())
}

func (d *Dashboard) Gasometers() []models.Gasometer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gasometerList
}

// Index returns the gasometer label index, which may be nil.
func (d *Dashboard) Index() *GasometerIndex {
	return d.opts.index
}

// Now is the dashboard clock.
func (d *Dashboard) Now() time.Time {
	return d.opts.now()
}
