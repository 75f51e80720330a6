package ingest

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2025, time.December, 6, 9, 30, 0, 0, time.UTC)

func TestParseJSONNormalizesRecords(t *testing.T) {
	raw := []byte(`{
		"meta": {"source": "fixture", "total_entries": 3},
		"applications": [
			{"id": 1, "title": "Dev", "company": "Acme", "location": "Toronto, ON", "status": "Applied", "date_applied": "2025-09-01"},
			{"id": 2, "title": "QA", "company": null, "status": "Interviewing", "date_applied": "Applied yesterday"},
			{"id": 3, "title": "Ops", "company": "Beta", "location": "Remote", "status": "Rejected", "date_applied": "2025-10-12"}
		]
	}`)

	ds, err := ParseJSON(raw, now)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if ds.Meta == nil || ds.Meta.Source != "fixture" {
		t.Errorf("meta not preserved: %+v", ds.Meta)
	}
	if ds.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ds.Len())
	}

	wantOrder := []int{2, 3, 1}
	for i, id := range wantOrder {
		if ds.Applications[i].ID != id {
			t.Fatalf("order = %+v, want ids %v", ds.Applications, wantOrder)
		}
	}

	qa := ds.Applications[0]
	if qa.DateApplied != "2025-12-05" {
		t.Errorf("relative date = %q, want 2025-12-05", qa.DateApplied)
	}
	if qa.Company != "" || qa.Location != "" {
		t.Errorf("null and absent fields should be empty, got %+v", qa)
	}
}

func TestParseJSONInvalidFormat(t *testing.T) {
	cases := map[string]string{
		"not json":             `{"applications": [`,
		"empty":                "  ",
		"missing applications": `{"meta": {}}`,
		"null applications":    `{"applications": null}`,
		"wrong type":           `{"applications": "nope"}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(raw), now)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("err = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestParseJSONEmptyApplications(t *testing.T) {
	ds, err := ParseJSON([]byte(`{"applications": []}`), now)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if ds.Len() != 0 || ds.Applications == nil {
		t.Errorf("want empty non-nil list, got %#v", ds.Applications)
	}
}

func TestIngestKeepsEmptyDateAndSortsItLast(t *testing.T) {
	ds, err := ParseJSON([]byte(`{"applications": [
		{"id": 1, "title": "A", "date_applied": ""},
		{"id": 2, "title": "B", "date_applied": "2024-01-01"}
	]}`), now)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Applications[0].ID != 2 || ds.Applications[1].DateApplied != "" {
		t.Errorf("got %+v", ds.Applications)
	}
}

func TestIngestStableForEqualDates(t *testing.T) {
	ds, err := ParseJSON([]byte(`{"applications": [
		{"id": 5, "date_applied": "2025-01-01"},
		{"id": 3, "date_applied": "2025-01-01"},
		{"id": 9, "date_applied": "2025-01-01"}
	]}`), now)
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []int{5, 3, 9} {
		if ds.Applications[i].ID != id {
			t.Fatalf("equal dates reordered: %+v", ds.Applications)
		}
	}
}

func TestIngestReassignsMissingAndDuplicateIDs(t *testing.T) {
	ds, err := ParseJSON([]byte(`{"applications": [
		{"id": 4, "date_applied": "2025-01-04"},
		{"title": "no id", "date_applied": "2025-01-03"},
		{"id": 4, "date_applied": "2025-01-02"},
		{"id": 2, "date_applied": "2025-01-01"}
	]}`), now)
	if err != nil {
		t.Fatal(err)
	}

	got := []int{}
	seen := map[int]bool{}
	for _, app := range ds.Applications {
		if seen[app.ID] {
			t.Fatalf("duplicate id %d in %+v", app.ID, ds.Applications)
		}
		seen[app.ID] = true
		got = append(got, app.ID)
	}
	want := []int{4, 5, 6, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}
