// Package aggregate derives KPI numbers and chart-ready counts from the
// canonical application list.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"appdash/internal/dates"
	"appdash/pkg/models"
)

// UnknownKey is the bucket for empty values when counting
const UnknownKey = "Unknown"

// nonResponsive are the lowercased statuses that carry no employer action
var nonResponsive = map[string]bool{
	"applied": true,
	"unknown": true,
	"":        true,
}

// CountBy counts occurrences of each distinct value of field, in order of
// first occurrence.
func CountBy(records []models.Application, field models.Field) []models.Count {
	index := make(map[string]int)
	counts := make([]models.Count, 0)

	for _, rec := range records {
		key := rec.Value(field)
		if key == "" {
			key = UnknownKey
		}
		if i, ok := index[key]; ok {
			counts[i].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, models.Count{Key: key, Count: 1})
	}
	return counts
}

// TopN returns the n largest counts. Ties keep their input order.
func TopN(counts []models.Count, n int) []models.Count {
	sorted := make([]models.Count, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// ResponseRate is the percentage of records whose status shows an employer
// action, formatted with one decimal. An empty list gives "0.0".
func ResponseRate(records []models.Application) string {
	if len(records) == 0 {
		return formatRate(0)
	}

	responsive := 0
	for _, rec := range records {
		if !nonResponsive[strings.ToLower(rec.Status)] {
			responsive++
		}
	}
	return formatRate(100 * float64(responsive) / float64(len(records)))
}

// LocationRate is the response rate over records whose location contains sub,
// case-insensitively.
func LocationRate(records []models.Application, sub string) string {
	needle := strings.ToLower(sub)
	matched := make([]models.Application, 0)
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Location), needle) {
			matched = append(matched, rec)
		}
	}
	return ResponseRate(matched)
}

// MonthlyTimeline counts records per YYYY-MM, ascending. Records without a
// canonical date are skipped.
func MonthlyTimeline(records []models.Application) []models.Count {
	byMonth := make(map[string]int)
	for _, rec := range records {
		if month := dates.Month(rec.DateApplied); month != "" {
			byMonth[month]++
		}
	}

	timeline := make([]models.Count, 0, len(byMonth))
	for month, count := range byMonth {
		timeline = append(timeline, models.Count{Key: month, Count: count})
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Key < timeline[j].Key
	})
	return timeline
}

// BuildKPIs computes the headline numbers for a location focus
func BuildKPIs(records []models.Application, location string) models.KPIs {
	return models.KPIs{
		Total:        len(records),
		ResponseRate: ResponseRate(records),
		LocationRate: LocationRate(records, location),
		Location:     location,
	}
}

// BuildCharts computes every chart series. Locations and titles are cut to the
// top n.
func BuildCharts(records []models.Application, n int) models.Charts {
	return models.Charts{
		Status:       CountBy(records, models.FieldStatus),
		TopLocations: TopN(CountBy(records, models.FieldLocation), n),
		TopTitles:    TopN(CountBy(records, models.FieldTitle), n),
		Timeline:     MonthlyTimeline(records),
	}
}

func formatRate(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
