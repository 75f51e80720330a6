// Package table filters, sorts and paginates application records for the
// dashboard table.
package table

import (
	"sort"
	"strings"

	"appdash/pkg/models"
)

// Apply returns the records that pass filter, ordered by sortState. The input
// slice is never modified.
func Apply(records []models.Application, filter models.FilterState, sortState models.SortState) []models.Application {
	view := make([]models.Application, 0, len(records))
	for _, rec := range records {
		if Matches(rec, filter) {
			view = append(view, rec)
		}
	}
	Sort(view, sortState)
	return view
}

// Matches reports whether rec passes every active filter. Text filters are
// case-insensitive substring matches and date bounds are inclusive.
func Matches(rec models.Application, filter models.FilterState) bool {
	if filter.DateStart != "" && rec.DateApplied < filter.DateStart {
		return false
	}
	if filter.DateEnd != "" && rec.DateApplied > filter.DateEnd {
		return false
	}
	return contains(rec.Status, filter.Status) &&
		contains(rec.Title, filter.Title) &&
		contains(rec.Company, filter.Company) &&
		contains(rec.Location, filter.Location)
}

// Sort orders records in place by the active column. Equal keys keep their
// relative order; no column leaves the slice untouched.
func Sort(records []models.Application, sortState models.SortState) {
	if sortState.IsNone() {
		return
	}
	s := sortState.Normalized()

	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j], s.Column)
		if s.Direction == models.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b models.Application, column models.Field) int {
	if column == models.FieldID {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(a.Value(column)), strings.ToLower(b.Value(column)))
}

func contains(value, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
