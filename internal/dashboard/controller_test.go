package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"appdash/internal/exporter"
	"appdash/internal/ingest"
	"appdash/internal/logging"
	"appdash/internal/source"
	"appdash/pkg/models"
)

var fixedNow = time.Date(2025, time.December, 6, 10, 0, 0, 0, time.UTC)

// memSource serves datasets from memory. A name listed in gates blocks until
// its channel is closed.
type memSource struct {
	mu    sync.Mutex
	data  map[string]string
	gates map[string]chan struct{}
}

func (m *memSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	gate := m.gates[name]
	body, ok := m.data[name]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", source.ErrFetchFailure, ctx.Err())
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", source.ErrFetchFailure, name)
	}
	return []byte(body), nil
}

func (m *memSource) Kind() string { return "memory" }
func (m *memSource) Close() error { return nil }

// datasetJSON builds a dataset of n records with titles prefixed by tag
func datasetJSON(tag string, n int) string {
	var b strings.Builder
	b.WriteString(`{"applications":[`)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		status := "Applied"
		if i%3 == 0 {
			status = "Interview"
		}
		fmt.Fprintf(&b, `{"id":%d,"title":"%s %d","company":"Co %d","location":"Toronto, ON","status":"%s","date_applied":"2025-%02d-%02d"}`,
			i, tag, i, i%4, status, 1+i%12, 1+i%28)
	}
	b.WriteString(`]}`)
	return b.String()
}

func newController(src source.Source) *Controller {
	return New(src, Options{
		PageSize:      10,
		LocationFocus: "Toronto",
		TopN:          5,
		Logger:        logging.Nop(),
		Now:           func() time.Time { return fixedNow },
	})
}

func TestInitIsIdempotent(t *testing.T) {
	src := &memSource{data: map[string]string{"apps.json": datasetJSON("a", 3)}}
	c := New(src, Options{DefaultDataset: "apps.json", Logger: logging.Nop()})

	if c.Lifecycle() != Uninitialized {
		t.Fatalf("lifecycle = %s", c.Lifecycle())
	}
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if c.Lifecycle() != Ready || c.Dataset().Len() != 3 {
		t.Fatalf("after Init: %s, %d records", c.Lifecycle(), c.Dataset().Len())
	}

	src.data["apps.json"] = datasetJSON("b", 7)
	if err := c.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Dataset().Len() != 3 {
		t.Error("second Init reloaded the dataset")
	}
}

func TestLoadFailureKeepsPreviousDataset(t *testing.T) {
	src := &memSource{data: map[string]string{
		"good.json": datasetJSON("good", 5),
		"bad.json":  `{"meta":{}}`,
	}}
	c := newController(src)

	if _, err := c.Load(context.Background(), "good.json"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(context.Background(), "bad.json"); !errors.Is(err, ingest.ErrInvalidFormat) {
		t.Errorf("bad.json err = %v", err)
	}
	if _, err := c.Load(context.Background(), "missing.json"); !errors.Is(err, source.ErrFetchFailure) {
		t.Errorf("missing.json err = %v", err)
	}
	if c.Dataset().Len() != 5 || c.Origin() != "good.json" {
		t.Errorf("previous dataset lost: %d records from %q", c.Dataset().Len(), c.Origin())
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &memSource{
		data:  map[string]string{"old.json": datasetJSON("old", 4), "new.json": datasetJSON("new", 2)},
		gates: map[string]chan struct{}{"old.json": gate},
	}
	c := newController(src)

	started := make(chan struct{})
	oldErr := make(chan error, 1)
	go func() {
		close(started)
		_, err := c.Load(context.Background(), "old.json")
		oldErr <- err
	}()
	<-started

	// wait until the old load holds its ticket
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		gen := c.generation
		c.mu.Unlock()
		if gen == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("old load never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Load(context.Background(), "new.json"); err != nil {
		t.Fatalf("new load: %v", err)
	}
	close(gate)

	if err := <-oldErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("old load err = %v, want ErrSuperseded", err)
	}
	if c.Origin() != "new.json" || c.Dataset().Len() != 2 {
		t.Errorf("stale load overwrote dataset: %q with %d records", c.Origin(), c.Dataset().Len())
	}
}

func TestCommitRejectsOldTicket(t *testing.T) {
	c := newController(nil)
	first := c.BeginLoad()
	second := c.BeginLoad()

	if err := c.commit(first, &models.Dataset{}, "first"); !errors.Is(err, ErrSuperseded) {
		t.Errorf("commit(first) = %v", err)
	}
	if err := c.commit(second, &models.Dataset{}, "second"); err != nil {
		t.Errorf("commit(second) = %v", err)
	}
}

func TestPagingAndFilterState(t *testing.T) {
	c := newController(nil)
	if _, err := c.LoadBytes(context.Background(), []byte(datasetJSON("job", 23)), FormatJSON); err != nil {
		t.Fatal(err)
	}

	res := c.NextPage()
	res = c.NextPage()
	if res.State.CurrentPage != 3 || len(res.Items) != 3 || res.HasNext {
		t.Fatalf("page 3 = %+v", res.State)
	}
	if res = c.NextPage(); res.State.CurrentPage != 3 {
		t.Errorf("NextPage past the end moved to %d", res.State.CurrentPage)
	}

	// same filter keeps the page
	if res = c.SetFilter(models.FilterState{}); res.State.CurrentPage != 3 {
		t.Errorf("unchanged filter reset page to %d", res.State.CurrentPage)
	}

	res = c.SetFilter(models.FilterState{Company: "co 1"})
	if res.State.CurrentPage != 1 || res.Total != 6 {
		t.Errorf("filtered = page %d, total %d", res.State.CurrentPage, res.Total)
	}

	c.GoToPage(99)
	if c.Page().State.CurrentPage != 1 {
		t.Errorf("GoToPage was not clamped")
	}
	if c.PrevPage().State.CurrentPage != 1 {
		t.Error("PrevPage moved below 1")
	}
}

func TestToggleSort(t *testing.T) {
	c := newController(nil)
	c.LoadBytes(context.Background(), []byte(datasetJSON("job", 12)), FormatJSON)
	c.NextPage()

	res := c.ToggleSort(models.FieldID)
	if c.Sort() != (models.SortState{Column: models.FieldID, Direction: models.Asc}) || res.State.CurrentPage != 1 {
		t.Fatalf("first toggle = %+v page %d", c.Sort(), res.State.CurrentPage)
	}
	if res.Items[0].ID != 1 {
		t.Errorf("asc first id = %d", res.Items[0].ID)
	}

	res = c.ToggleSort(models.FieldID)
	if c.Sort().Direction != models.Desc || res.Items[0].ID != 12 {
		t.Errorf("second toggle = %+v first id %d", c.Sort(), res.Items[0].ID)
	}

	c.ToggleSort(models.FieldTitle)
	if c.Sort() != (models.SortState{Column: models.FieldTitle, Direction: models.Asc}) {
		t.Errorf("new column = %+v", c.Sort())
	}
}

func TestNewDatasetResetsState(t *testing.T) {
	c := newController(nil)
	c.LoadBytes(context.Background(), []byte(datasetJSON("a", 30)), FormatJSON)
	c.SetFilter(models.FilterState{Title: "a"})
	c.ToggleSort(models.FieldCompany)
	c.NextPage()

	c.LoadBytes(context.Background(), []byte(datasetJSON("b", 30)), FormatJSON)
	if !c.Filter().IsEmpty() || !c.Sort().IsNone() || c.Page().State.CurrentPage != 1 {
		t.Errorf("state not reset: %+v %+v %+v", c.Filter(), c.Sort(), c.Page().State)
	}
}

func TestViewReadsCurrentDataset(t *testing.T) {
	c := newController(nil)
	c.LoadBytes(context.Background(), []byte(datasetJSON("first", 4)), FormatJSON)
	c.LoadBytes(context.Background(), []byte(datasetJSON("second", 2)), FormatJSON)

	c.SetFilter(models.FilterState{Title: "first"})
	if n := len(c.View()); n != 0 {
		t.Errorf("filter matched %d records of a replaced dataset", n)
	}
	c.SetFilter(models.FilterState{Title: "second"})
	if n := len(c.View()); n != 2 {
		t.Errorf("view has %d records, want 2", n)
	}
}

func TestLoadBytesHTMLAndErrors(t *testing.T) {
	c := newController(nil)
	page := `<div class="atw-AppCard"><div class="atw-JobInfo-jobTitle">Dev</div></div>`
	ds, err := c.LoadBytes(context.Background(), []byte(page), FormatHTML)
	if err != nil || ds.Len() != 1 || ds.Applications[0].Status != "Applied" {
		t.Fatalf("html load = %+v, %v", ds, err)
	}

	if _, err := c.LoadBytes(context.Background(), []byte(`<p>none</p>`), FormatHTML); !errors.Is(err, ingest.ErrNoExtractedRecords) {
		t.Errorf("no cards err = %v", err)
	}
	if _, err := c.LoadBytes(context.Background(), []byte(`{}`), "xml"); !errors.Is(err, ingest.ErrInvalidFormat) {
		t.Errorf("unknown format err = %v", err)
	}
	if c.Dataset().Len() != 1 {
		t.Error("failed uploads replaced the dataset")
	}
}

func TestKPIsChartsAndExport(t *testing.T) {
	c := newController(nil)
	if _, err := c.Export(); !errors.Is(err, exporter.ErrEmptyExport) {
		t.Errorf("export with no data = %v", err)
	}

	c.LoadBytes(context.Background(), []byte(datasetJSON("job", 9)), FormatJSON)
	c.SetFilter(models.FilterState{Status: "interview"})

	kpis := c.KPIs("")
	if kpis.Total != 9 || kpis.ResponseRate != "33.3" || kpis.Location != "Toronto" || kpis.LocationRate != "33.3" {
		t.Errorf("KPIs = %+v", kpis)
	}
	if charts := c.Charts(0); len(charts.TopTitles) != 5 {
		t.Errorf("TopTitles = %v", charts.TopTitles)
	}

	csv, err := c.Export()
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(csv, "\n"); len(lines) != 4 {
		t.Errorf("export has %d lines, want header + 3 rows", len(lines))
	}

	c.SetFilter(models.FilterState{Title: "nothing"})
	if _, err := c.Export(); !errors.Is(err, exporter.ErrEmptyExport) {
		t.Errorf("empty view export = %v", err)
	}
}

func TestResponseCarriesState(t *testing.T) {
	c := newController(nil)
	c.LoadBytes(context.Background(), []byte(datasetJSON("job", 15)), FormatJSON)
	c.SetFilter(models.FilterState{Location: "toronto"})
	resp := c.Response(c.NextPage())

	if resp.Page.CurrentPage != 2 || resp.Start != 11 || resp.End != 15 || !resp.HasPrev || resp.HasNext {
		t.Errorf("response = %+v", resp)
	}
	if resp.Filter.Location != "toronto" {
		t.Errorf("filter not echoed: %+v", resp.Filter)
	}
}
