package ingest

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"appdash/internal/dates"
	"appdash/pkg/models"
)

// Card selectors on the job board's "My jobs" page
const (
	CardSelector            = ".atw-AppCard"
	TitleSelector           = ".atw-JobInfo-jobTitle"
	CompanyLocationSelector = ".atw-JobInfo-companyLocation span"
	StatusSelector          = ".atw-StatusTag-description"
	DateSelector            = `[data-testid="jobStatusDateShort"]`

	// ExtractorVersion is recorded in the meta of extracted datasets
	ExtractorVersion = "2.0"
	// ExtractSource is the meta source label of extracted datasets
	ExtractSource = "Indeed Application History (HTML Extract)"

	titleSuffix   = "job description opens in a new window"
	defaultStatus = "Applied"
)

// Queryable is a parsed markup node that can be searched by CSS selector
type Queryable interface {
	Query(selector string) []Queryable
	Text() string
}

// selection adapts a goquery selection to Queryable
type selection struct {
	sel *goquery.Selection
}

// NewQueryable wraps a parsed goquery document
func NewQueryable(doc *goquery.Document) Queryable {
	return selection{sel: doc.Selection}
}

func (s selection) Query(selector string) []Queryable {
	found := s.sel.Find(selector)
	nodes := make([]Queryable, 0, found.Length())
	found.Each(func(_ int, child *goquery.Selection) {
		nodes = append(nodes, selection{sel: child})
	})
	return nodes
}

func (s selection) Text() string {
	return s.sel.Text()
}

// ExtractHTML parses an HTML page and extracts its application cards
func ExtractHTML(r io.Reader, now time.Time) (*models.Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %v", ErrInvalidFormat, err)
	}
	return ExtractDataset(NewQueryable(doc), now)
}

// ExtractDataset builds a dataset from the application cards of a parsed page.
// Ids are assigned 1-based in page order.
func ExtractDataset(doc Queryable, now time.Time) (*models.Dataset, error) {
	cards := doc.Query(CardSelector)
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no %s elements found", ErrNoExtractedRecords, CardSelector)
	}

	apps := make([]models.Application, 0, len(cards))
	for i, card := range cards {
		app := models.Application{
			ID:     i + 1,
			Title:  cleanTitle(firstText(card, TitleSelector)),
			Status: defaultStatus,
		}

		spans := card.Query(CompanyLocationSelector)
		if len(spans) > 0 {
			app.Company = strings.TrimSpace(spans[0].Text())
		}
		if len(spans) > 1 {
			app.Location = strings.TrimSpace(spans[1].Text())
		}

		if status := card.Query(StatusSelector); len(status) > 0 {
			app.Status = strings.TrimSpace(status[0].Text())
		}

		app.DateApplied = dates.Normalize(firstText(card, DateSelector), now)
		apps = append(apps, app)
	}

	SortByDateDesc(apps)

	return &models.Dataset{
		Meta: &models.Meta{
			CreationTimestamp: now.Format(time.RFC3339),
			Source:            ExtractSource,
			TotalEntries:      len(apps),
			ExportDate:        now.Format(dates.Layout),
			ExtractorVersion:  ExtractorVersion,
		},
		Applications: apps,
	}, nil
}

func firstText(node Queryable, selector string) string {
	found := node.Query(selector)
	if len(found) == 0 {
		return ""
	}
	return found[0].Text()
}

// cleanTitle drops the screen-reader suffix and collapses whitespace
func cleanTitle(title string) string {
	title = strings.ReplaceAll(title, titleSuffix, "")
	return strings.Join(strings.Fields(title), " ")
}
