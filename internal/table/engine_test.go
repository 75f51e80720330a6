package table

import (
	"reflect"
	"testing"

	"appdash/pkg/models"
)

var records = []models.Application{
	{ID: 10, Title: "backend dev", Company: "Acme", Location: "Toronto, ON", Status: "Applied", DateApplied: "2025-09-15"},
	{ID: 2, Title: "Data Analyst", Company: "beta", Location: "Remote", Status: "Interview", DateApplied: "2025-10-01"},
	{ID: 7, Title: "Backend Dev", Company: "Gamma", Location: "Toronto, ON", Status: "Rejected", DateApplied: "2025-08-20"},
	{ID: 1, Title: "QA", Company: "acme", Location: "Montreal", Status: "", DateApplied: ""},
}

func ids(apps []models.Application) []int {
	out := make([]int, len(apps))
	for i, a := range apps {
		out[i] = a.ID
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter models.FilterState
		want   []int
	}{
		{"no filter", models.FilterState{}, []int{10, 2, 7, 1}},
		{"company case-insensitive", models.FilterState{Company: "ACME"}, []int{10, 1}},
		{"status substring", models.FilterState{Status: "ject"}, []int{7}},
		{"date range inclusive", models.FilterState{DateStart: "2025-09-15", DateEnd: "2025-10-01"}, []int{10, 2}},
		{"date start excludes empty date", models.FilterState{DateStart: "2025-01-01"}, []int{10, 2, 7}},
		{"conjunction", models.FilterState{Title: "backend", Location: "toronto", Status: "app"}, []int{10}},
		{"no match", models.FilterState{Title: "manager"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(records, tt.filter, models.SortState{}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplySorts(t *testing.T) {
	tests := []struct {
		name string
		sort models.SortState
		want []int
	}{
		{"id numeric asc", models.SortState{Column: models.FieldID, Direction: models.Asc}, []int{1, 2, 7, 10}},
		{"id numeric desc", models.SortState{Column: models.FieldID, Direction: models.Desc}, []int{10, 7, 2, 1}},
		{"title case-insensitive and stable", models.SortState{Column: models.FieldTitle}, []int{10, 7, 2, 1}},
		{"company desc stable", models.SortState{Column: models.FieldCompany, Direction: models.Desc}, []int{7, 2, 10, 1}},
		{"date asc puts empty first", models.SortState{Column: models.FieldDateApplied, Direction: models.Asc}, []int{1, 7, 10, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(records, models.FilterState{}, tt.sort))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := make([]models.Application, len(records))
	copy(before, records)

	Apply(records, models.FilterState{Company: "a"}, models.SortState{Column: models.FieldID, Direction: models.Desc})

	if !reflect.DeepEqual(before, records) {
		t.Error("Apply mutated its input")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	filter := models.FilterState{Location: "o"}
	sortState := models.SortState{Column: models.FieldStatus, Direction: models.Desc}

	once := Apply(records, filter, sortState)
	twice := Apply(once, filter, sortState)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Apply is not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestMatchesEmptyFilterAcceptsEverything(t *testing.T) {
	for _, rec := range records {
		if !Matches(rec, models.FilterState{}) {
			t.Errorf("empty filter rejected %+v", rec)
		}
	}
}
