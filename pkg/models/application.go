package models

import "strconv"

// Application represents a single job application event
type Application struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	DateApplied string `json:"date_applied"`
}

// Meta describes where a dataset came from
type Meta struct {
	CreationTimestamp string `json:"creation_timestamp,omitempty"`
	Source            string `json:"source,omitempty"`
	TotalEntries      int    `json:"total_entries,omitempty"`
	ExportDate        string `json:"export_date,omitempty"`
	ExtractorVersion  string `json:"extractor_version,omitempty"`
}

// Dataset is the canonical, ingested list of applications.
// It is never mutated after ingestion; a new load replaces it.
type Dataset struct {
	Meta         *Meta         `json:"meta,omitempty"`
	Applications []Application `json:"applications"`
}

// Len returns the number of applications in the dataset
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Applications)
}

// Field names a column of an Application
type Field string

const (
	FieldID          Field = "id"
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldLocation    Field = "location"
	FieldStatus      Field = "status"
	FieldDateApplied Field = "date_applied"
)

// Fields lists every column in table order
var Fields = []Field{FieldID, FieldTitle, FieldCompany, FieldLocation, FieldStatus, FieldDateApplied}

// IsValid reports whether f names a known column
func (f Field) IsValid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Value returns the textual value of the given field
func (a Application) Value(f Field) string {
	switch f {
	case FieldID:
		return strconv.Itoa(a.ID)
	case FieldTitle:
		return a.Title
	case FieldCompany:
		return a.Company
	case FieldLocation:
		return a.Location
	case FieldStatus:
		return a.Status
	case FieldDateApplied:
		return a.DateApplied
	default:
		return ""
	}
}
