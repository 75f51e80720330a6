// Package ingest validates raw application datasets and normalizes them into
// the canonical in-memory record list.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"appdash/internal/dates"
	"appdash/pkg/models"
)

// Sentinel errors to allow precise mapping in handlers
var (
	ErrInvalidFormat      = errors.New("invalid_format")
	ErrNoExtractedRecords = errors.New("no_extracted_records")
)

// RawApplication is a record as it appears in a source document. Pointer
// fields distinguish an absent key from an empty one.
type RawApplication struct {
	ID          int     `json:"id"`
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
	DateApplied *string `json:"date_applied"`
}

// RawDataset is the top-level shape of a dataset document
type RawDataset struct {
	Meta         *models.Meta      `json:"meta"`
	Applications *[]RawApplication `json:"applications"`
}

// ParseJSON decodes and ingests a dataset document
func ParseJSON(raw []byte, now time.Time) (*models.Dataset, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}

	var doc RawDataset
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return Ingest(doc, now)
}

// Ingest normalizes a raw dataset. Records come out with no nil text fields,
// canonical dates, unique ids, and in date-descending order.
func Ingest(doc RawDataset, now time.Time) (*models.Dataset, error) {
	if doc.Applications == nil {
		return nil, fmt.Errorf("%w: missing applications collection", ErrInvalidFormat)
	}

	apps := make([]models.Application, 0, len(*doc.Applications))
	for _, raw := range *doc.Applications {
		apps = append(apps, models.Application{
			ID:          raw.ID,
			Title:       deref(raw.Title),
			Company:     deref(raw.Company),
			Location:    deref(raw.Location),
			Status:      deref(raw.Status),
			DateApplied: normalizeDate(deref(raw.DateApplied), now),
		})
	}

	ensureUniqueIDs(apps)
	SortByDateDesc(apps)

	return &models.Dataset{Meta: doc.Meta, Applications: apps}, nil
}

// SortByDateDesc orders records newest first, keeping arrival order for ties.
// Records without a date sort last.
func SortByDateDesc(apps []models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].DateApplied > apps[j].DateApplied
	})
}

// normalizeDate passes canonical dates through untouched. An empty date stays
// empty: a structured record without a date has no phrase to resolve.
func normalizeDate(value string, now time.Time) string {
	if value == "" || dates.IsCanonical(value) {
		return value
	}
	return dates.Normalize(value, now)
}

// ensureUniqueIDs gives records with a missing or repeated id the next free id
func ensureUniqueIDs(apps []models.Application) {
	maxID := 0
	for _, app := range apps {
		if app.ID > maxID {
			maxID = app.ID
		}
	}

	seen := make(map[int]bool, len(apps))
	for i := range apps {
		if apps[i].ID <= 0 || seen[apps[i].ID] {
			maxID++
			apps[i].ID = maxID
		}
		seen[apps[i].ID] = true
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
