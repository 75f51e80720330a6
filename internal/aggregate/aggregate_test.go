package aggregate

import (
	"fmt"
	"strconv"
	"testing"

	"appdash/pkg/models"
)

var sample = []models.Application{
	{ID: 1, Title: "Dev", Status: "Applied", Location: "Toronto, ON", DateApplied: "2025-09-15"},
	{ID: 2, Title: "QA", Status: "Interview", Location: "Vancouver, BC", DateApplied: "2025-10-02"},
	{ID: 3, Title: "Dev", Status: "Not selected by employer", Location: "Toronto, ON", DateApplied: "2025-09-01"},
}

func TestResponseAndLocationRate(t *testing.T) {
	if got := ResponseRate(sample); got != "66.7" {
		t.Errorf("ResponseRate = %q, want 66.7", got)
	}
	if got := LocationRate(sample, "Toronto"); got != "50.0" {
		t.Errorf("LocationRate(Toronto) = %q, want 50.0", got)
	}
	if got := LocationRate(sample, "toronto"); got != "50.0" {
		t.Errorf("LocationRate is case-sensitive: %q", got)
	}
	if got := LocationRate(sample, "Montreal"); got != "0.0" {
		t.Errorf("LocationRate with no match = %q, want 0.0", got)
	}
}

func TestResponseRateEmpty(t *testing.T) {
	if got := ResponseRate(nil); got != "0.0" {
		t.Errorf("ResponseRate(nil) = %q", got)
	}
}

func TestResponseRateComparesStatusVerbatim(t *testing.T) {
	// padded statuses are distinct values, as they are for CountBy
	records := []models.Application{{Status: "Applied "}, {Status: " "}, {Status: "Applied"}, {Status: "applied"}}
	if got := ResponseRate(records); got != "50.0" {
		t.Errorf("ResponseRate = %q, want 50.0", got)
	}
	if counts := CountBy(records, models.FieldStatus); len(counts) != 4 {
		t.Errorf("CountBy buckets = %d, want 4", len(counts))
	}
}

func TestResponseRateExcludesUnknownAndEmpty(t *testing.T) {
	records := []models.Application{
		{Status: "applied"}, {Status: "Unknown"}, {Status: ""}, {Status: "Offer"},
	}
	if got := ResponseRate(records); got != "25.0" {
		t.Errorf("ResponseRate = %q, want 25.0", got)
	}
}

func TestResponseRateBounds(t *testing.T) {
	statuses := []string{"Applied", "Interview", "", "Rejected", "unknown"}
	for n := 1; n <= 40; n++ {
		records := make([]models.Application, n)
		nonResponsive := 0
		for i := range records {
			records[i].Status = statuses[(i*7+n)%len(statuses)]
			switch records[i].Status {
			case "Applied", "", "unknown":
				nonResponsive++
			}
		}

		got := ResponseRate(records)
		pct, err := strconv.ParseFloat(got, 64)
		if err != nil || pct < 0 || pct > 100 {
			t.Fatalf("n=%d: ResponseRate = %q out of range", n, got)
		}
		want := fmt.Sprintf("%.1f", 100*float64(n-nonResponsive)/float64(n))
		if got != want {
			t.Fatalf("n=%d: ResponseRate = %q, want %q", n, got, want)
		}
	}
}

func TestCountByOrderAndUnknown(t *testing.T) {
	records := append([]models.Application{{Title: ""}}, sample...)
	got := CountBy(records, models.FieldTitle)
	want := []models.Count{{Key: "Unknown", Count: 1}, {Key: "Dev", Count: 2}, {Key: "QA", Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("CountBy = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CountBy = %v, want %v", got, want)
		}
	}
}

func TestTopNStableOnTies(t *testing.T) {
	counts := []models.Count{{Key: "a", Count: 1}, {Key: "b", Count: 3}, {Key: "c", Count: 1}, {Key: "d", Count: 3}, {Key: "e", Count: 2}}
	got := TopN(counts, 3)
	want := []string{"b", "d", "e"}
	for i, key := range want {
		if got[i].Key != key {
			t.Fatalf("TopN = %v, want keys %v", got, want)
		}
	}
	if counts[0].Key != "a" {
		t.Error("TopN mutated its input")
	}
	if len(TopN(counts, 10)) != 5 {
		t.Error("TopN with n > len should return all")
	}
}

func TestMonthlyTimelineSkipsMissingDates(t *testing.T) {
	records := append([]models.Application{{DateApplied: ""}}, sample...)
	got := MonthlyTimeline(records)
	if len(got) != 2 || got[0] != (models.Count{Key: "2025-09", Count: 2}) || got[1] != (models.Count{Key: "2025-10", Count: 1}) {
		t.Errorf("MonthlyTimeline = %v", got)
	}
}

func TestBuildKPIsAndCharts(t *testing.T) {
	kpis := BuildKPIs(sample, "Toronto")
	if kpis.Total != 3 || kpis.ResponseRate != "66.7" || kpis.LocationRate != "50.0" || kpis.Location != "Toronto" {
		t.Errorf("BuildKPIs = %+v", kpis)
	}

	charts := BuildCharts(sample, 1)
	if len(charts.Status) != 3 || len(charts.TopLocations) != 1 || charts.TopLocations[0].Key != "Toronto, ON" {
		t.Errorf("BuildCharts = %+v", charts)
	}
	if len(charts.TopTitles) != 1 || charts.TopTitles[0] != (models.Count{Key: "Dev", Count: 2}) {
		t.Errorf("TopTitles = %v", charts.TopTitles)
	}
}
