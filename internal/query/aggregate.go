package query

import (
	"fmt"
	"time"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

const isoDate = "2006-01-02"

// DefaultWindow is the trailing window, in days, used until another is chosen.
const DefaultWindow = 7

// TrailingWindows lists the selectable trailing windows in days.
var TrailingWindows = []int{7, 15, 30, 90}

// ValidWindow reports whether days is a selectable trailing window.
func ValidWindow(days int) bool {
	for _, d := range TrailingWindows {
		if d == days {
			return true
		}
	}
	return false
}

// ChartSeries sums consumption per reading date. Points come out in the
// order their dates first appear in readings. A consumption that does not
// parse turns its date's value into NaN.
func ChartSeries(readings []models.Reading) []models.ChartPoint {
	points := make([]models.ChartPoint, 0)
	index := make(map[string]int)
	for _, r := range readings {
		value := r.Consumption.Float64()
		if i, ok := index[r.Date]; ok {
			points[i].Value += value
			continue
		}
		index[r.Date] = len(points)
		points = append(points, models.ChartPoint{Date: r.Date, Value: value})
	}
	return points
}

// WindowStats summarises the readings of a trailing window.
type WindowStats struct {
	Days          int
	Readings      int
	Gasometers    int
	AveragePerDay float64
}

// AverageLabel formats the average with two decimals.
func (s WindowStats) AverageLabel() string {
	return fmt.Sprintf("%.2f", s.AveragePerDay)
}

// TrailingWindow counts readings dated between now-days and now, inclusive,
// at UTC day precision. The average divides by days, not by the number of
// days that have data.
func TrailingWindow(readings []models.Reading, days int, now time.Time) (WindowStats, error) {
	if !ValidWindow(days) {
		return WindowStats{}, fmt.Errorf("invalid window: %d", days)
	}

	now = now.UTC()
	window := DateRange{
		Start: now.AddDate(0, 0, -days).Format(isoDate),
		End:   now.Format(isoDate),
	}

	stats := WindowStats{Days: days}
	gasometers := make(map[int]struct{})
	for _, r := range readings {
		if !window.Contains(r.Date) {
			continue
		}
		stats.Readings++
		gasometers[r.Gasometer] = struct{}{}
	}
	stats.Gasometers = len(gasometers)
	stats.AveragePerDay = float64(stats.Readings) / float64(days)

	return stats, nil
}
