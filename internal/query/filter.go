// Package query holds the client-side list processing shared by the views:
// filtering, date aggregation and pagination.
package query

import (
	"strconv"
	"strings"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

// Predicate reports whether an item is kept.
type Predicate[T any] func(T) bool

// Filter returns the items satisfying every predicate. Nil predicates are
// skipped. The result is never nil.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matchAll[T any](item T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// ReadingSearch matches readings whose id or gasometer id contains text.
// The comparison is case-sensitive and text is not trimmed.
func ReadingSearch(text string) Predicate[models.Reading] {
	return func(r models.Reading) bool {
		return strings.Contains(strconv.Itoa(r.ID), text) ||
			strings.Contains(strconv.Itoa(r.Gasometer), text)
	}
}

// GasometerSearch matches gasometers whose code contains text ignoring
// case, or whose id equals text exactly.
func GasometerSearch(text string) Predicate[models.Gasometer] {
	needle := strings.ToLower(text)
	return func(g models.Gasometer) bool {
		return strings.Contains(strings.ToLower(g.Code), needle) ||
			strconv.Itoa(g.ID) == text
	}
}

// DateRange bounds reading dates, inclusive on both ends. Dates are
// zero-padded ISO strings, so lexicographic order is date order.
type DateRange struct {
	Start string
	End   string
}

// Active reports whether both bounds are set. A half-open range filters
// nothing.
func (r DateRange) Active() bool {
	return r.Start != "" && r.End != ""
}

func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// InDateRange keeps readings dated within r.
func InDateRange(r DateRange) Predicate[models.Reading] {
	if !r.Active() {
		return nil
	}
	return func(reading models.Reading) bool {
		return r.Contains(reading.Date)
	}
}

// PeriodicityIs keeps readings with periodicity p. The empty value keeps
// everything.
func PeriodicityIs(p models.Periodicity) Predicate[models.Reading] {
	if p == "" {
		return nil
	}
	return func(r models.Reading) bool {
		return r.Periodicity == p
	}
}

// PeriodicityToggle is the periodicity filter selector: selecting the
// active value again clears it.
type PeriodicityToggle struct {
	active models.Periodicity
}

func (t *PeriodicityToggle) Select(p models.Periodicity) {
	if t.active == p {
		t.active = ""
		return
	}
	t.active = p
}

func (t *PeriodicityToggle) Active() models.Periodicity {
	return t.active
}

func (t *PeriodicityToggle) Clear() {
	t.active = ""
}
