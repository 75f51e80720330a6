// Package exporter serializes the filtered table view to CSV and optionally
// publishes it to object storage.
package exporter

import (
	"errors"
	"strconv"
	"strings"

	"appdash/pkg/models"
)

// FileName is the download name of a CSV export
const FileName = "indeed_applications_export.csv"

// Sentinel errors to allow precise mapping in handlers
var (
	ErrEmptyExport   = errors.New("empty_export")
	ErrStorageConfig = errors.New("storage_configuration")
	ErrUpload        = errors.New("upload_failed")
)

var header = []string{"ID", "Title", "Company", "Location", "Status", "Date Applied"}

// ToCSV renders the view as CSV. Text columns are always quoted; id and date
// are written bare. Rows are separated by a single newline.
func ToCSV(view []models.Application) (string, error) {
	if len(view) == 0 {
		return "", ErrEmptyExport
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))

	for _, app := range view {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(app.ID))
		for _, text := range []string{app.Title, app.Company, app.Location, app.Status} {
			b.WriteByte(',')
			b.WriteString(quote(text))
		}
		b.WriteByte(',')
		b.WriteString(app.DateApplied)
	}
	return b.String(), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
