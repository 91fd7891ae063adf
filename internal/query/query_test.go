package query

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

func reading(id, gasometer int, date, consumption string, p models.Periodicity) models.Reading {
	return models.Reading{
		ID:          id,
		Gasometer:   gasometer,
		Date:        date,
		Consumption: models.Consumption(consumption),
		Periodicity: p,
	}
}

func TestReadingSearch(t *testing.T) {
	readings := []models.Reading{
		reading(1, 30, "2024-01-01", "1", models.Monthly),
		reading(12, 4, "2024-01-02", "1", models.Monthly),
		reading(5, 7, "2024-01-03", "1", models.Weekly),
	}

	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "empty matches all", text: "", want: []int{1, 12, 5}},
		{name: "id substring", text: "1", want: []int{1, 12}},
		{name: "gasometer substring", text: "3", want: []int{1}},
		{name: "no trimming", text: " 5", want: []int{}},
		{name: "no match", text: "99", want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(readings, ReadingSearch(tt.text))
			ids := make([]int, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestGasometerSearch(t *testing.T) {
	gasometers := []models.Gasometer{
		{ID: 1, Code: "GAS-ALPHA"},
		{ID: 11, Code: "gas-beta"},
		{ID: 2, Code: "METER-1"},
	}

	assert.Len(t, Filter(gasometers, GasometerSearch("GaS")), 2)

	got := Filter(gasometers, GasometerSearch("1"))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID, "exact id match")
	assert.Equal(t, 2, got[1].ID, "code contains the text")
}

func TestDateRangeInclusive(t *testing.T) {
	readings := []models.Reading{
		reading(1, 1, "2024-01-01", "1", models.Monthly),
		reading(2, 1, "2024-01-05", "1", models.Monthly),
		reading(3, 1, "2024-01-10", "1", models.Monthly),
		reading(4, 1, "2024-01-11", "1", models.Monthly),
	}

	got := Filter(readings, InDateRange(DateRange{Start: "2024-01-01", End: "2024-01-10"}))
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.Equal(t, "2024-01-10", got[2].Date)

	// A half-open range does not filter.
	assert.Len(t, Filter(readings, InDateRange(DateRange{Start: "2024-01-05"})), 4)
}

func TestPeriodicityToggle(t *testing.T) {
	readings := []models.Reading{
		reading(1, 1, "2024-01-01", "1", models.Monthly),
		reading(2, 1, "2024-01-02", "1", models.Weekly),
	}

	var toggle PeriodicityToggle
	toggle.Select(models.Weekly)
	assert.Equal(t, models.Weekly, toggle.Active())
	assert.Len(t, Filter(readings, PeriodicityIs(toggle.Active())), 1)

	toggle.Select(models.Weekly)
	assert.Equal(t, models.Periodicity(""), toggle.Active())
	assert.Len(t, Filter(readings, PeriodicityIs(toggle.Active())), 2)

	toggle.Select(models.Monthly)
	toggle.Select(models.Weekly)
	assert.Equal(t, models.Weekly, toggle.Active())
}

func TestFilterEmpty(t *testing.T) {
	got := Filter[models.Reading](nil, ReadingSearch("1"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestChartSeries(t *testing.T) {
	readings := []models.Reading{
		reading(1, 1, "2024-01-01", "2.5", models.Monthly),
		reading(2, 2, "2024-01-01", "1.5", models.Monthly),
		reading(3, 1, "2024-01-02", "3", models.Monthly),
	}

	got := ChartSeries(readings)
	assert.Equal(t, []models.ChartPoint{
		{Date: "2024-01-01", Value: 4},
		{Date: "2024-01-02", Value: 3},
	}, got)
}

func TestChartSeriesFirstOccurrenceOrder(t *testing.T) {
	readings := []models.Reading{
		reading(1, 1, "2024-03-01", "1", models.Monthly),
		reading(2, 1, "2024-01-01", "1", models.Monthly),
		reading(3, 1, "2024-03-01", "1", models.Monthly),
		reading(4, 1, "2024-02-01", "1", models.Monthly),
	}

	got := ChartSeries(readings)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.Equal(t, 2.0, got[0].Value)
	assert.Equal(t, "2024-01-01", got[1].Date)
	assert.Equal(t, "2024-02-01", got[2].Date)

	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.Date], "duplicate date %s", p.Date)
		seen[p.Date] = true
	}
}

func TestChartSeriesMalformedPoisonsDate(t *testing.T) {
	readings := []models.Reading{
		reading(1, 1, "2024-01-01", "abc", models.Monthly),
		reading(2, 1, "2024-01-01", "1", models.Monthly),
		reading(3, 1, "2024-01-02", "1", models.Monthly),
	}

	got := ChartSeries(readings)
	require.Len(t, got, 2)
	assert.True(t, math.IsNaN(got[0].Value))
	assert.Equal(t, 1.0, got[1].Value)
}

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)
	readings := []models.Reading{
		reading(1, 1, "2024-03-20", "1", models.Monthly),
		reading(2, 2, "2024-03-13", "1", models.Monthly), // window start, inclusive
		reading(3, 1, "2024-03-15", "1", models.Monthly),
		reading(4, 3, "2024-03-12", "1", models.Monthly), // outside 7 days
		reading(5, 3, "2024-03-21", "1", models.Monthly), // future
	}

	stats, err := TrailingWindow(readings, 7, now)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Readings)
	assert.Equal(t, 2, stats.Gasometers)
	assert.Equal(t, 3.0/7.0, stats.AveragePerDay)
	assert.Equal(t, "0.43", stats.AverageLabel())

	stats, err = TrailingWindow(readings, 15, now)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Readings)
	assert.Equal(t, 3, stats.Gasometers)
	assert.Equal(t, 4.0/15.0, stats.AveragePerDay)

	_, err = TrailingWindow(readings, 10, now)
	assert.EqualError(t, err, "invalid window: 10")
}

func TestTrailingWindowAverageIsCountOverDays(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, days := range TrailingWindows {
		var readings []models.Reading
		for i := 0; i < days/2+1; i++ {
			readings = append(readings, reading(i, i%3, now.AddDate(0, 0, -i).Format("2006-01-02"), "1", models.Weekly))
		}
		stats, err := TrailingWindow(readings, days, now)
		require.NoError(t, err)
		assert.Equal(t, float64(stats.Readings)/float64(days), stats.AveragePerDay, "days=%d", days)
		assert.Equal(t, len(readings), stats.Readings)
	}
}

func TestPaginate(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("gasometer-%d", i+1)
	}

	assert.Equal(t, 3, TotalPages(len(items), PageSize))

	first := Paginate(items, 1, PageSize)
	require.Len(t, first, PageSize)
	assert.Equal(t, "gasometer-1", first[0])

	third := Paginate(items, 3, PageSize)
	assert.Equal(t, []string{"gasometer-19", "gasometer-20"}, third)

	assert.Equal(t, third, Paginate(items, 7, PageSize), "page clamps to last")
	assert.Equal(t, first, Paginate(items, 0, PageSize), "page clamps to first")

	for n := 0; n <= 30; n++ {
		c := items[:min(n, len(items))]
		for page := 1; page <= 4; page++ {
			assert.LessOrEqual(t, len(Paginate(c, page, PageSize)), PageSize)
		}
	}

	assert.Empty(t, Paginate([]string{}, 1, PageSize))
	assert.Equal(t, 0, TotalPages(0, PageSize))
	assert.Equal(t, 1, TotalPages(9, PageSize))
	assert.Equal(t, 2, TotalPages(10, PageSize))
}

func TestPager(t *testing.T) {
	p := NewPager(PageSize)
	p.Reset(20)
	assert.Equal(t, 1, p.Page())
	assert.Equal(t, 1, p.Prev())
	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, 3, p.Goto(10))
	assert.Equal(t, 1, p.Goto(-2))

	p.Goto(3)
	p.Reset(5)
	assert.Equal(t, 1, p.Page())
	assert.Equal(t, 1, p.TotalPages())

	p.Reset(0)
	assert.Equal(t, 1, p.Next())
}
