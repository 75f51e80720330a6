// Package dashboard owns the per-session dashboard state: the current dataset
// and the filter, sort and page state of its table.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"appdash/internal/aggregate"
	"appdash/internal/exporter"
	"appdash/internal/ingest"
	"appdash/internal/logging"
	"appdash/internal/logging/types"
	"appdash/internal/source"
	"appdash/internal/table"
	"appdash/pkg/models"
)

// ErrSuperseded is returned by a load that finished after a newer one started
var ErrSuperseded = errors.New("superseded")

// Lifecycle is the controller's initialization state
type Lifecycle string

const (
	Uninitialized Lifecycle = "uninitialized"
	Ready         Lifecycle = "ready"
)

// Format is the encoding of an uploaded dataset
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Ticket identifies one load. Only the most recent ticket may commit.
type Ticket uint64

// Options configures a controller
type Options struct {
	PageSize       int
	LocationFocus  string
	TopN           int
	DefaultDataset string
	Logger         types.Logger
	Now            func() time.Time
}

// Controller holds one session's dataset and table state. All methods are
// safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	src    source.Source
	opts   Options
	logger types.Logger

	lifecycle  Lifecycle
	generation Ticket
	dataset    *models.Dataset
	origin     string

	filter models.FilterState
	sort   models.SortState
	page   models.PageState

	lastUsed time.Time
}

// New creates an uninitialized controller reading named datasets from src
func New(src source.Source, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = models.DefaultPageSize
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetGlobalLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		src:       src,
		opts:      opts,
		logger:    opts.Logger,
		lifecycle: Uninitialized,
		page:      models.NewPageState(opts.PageSize),
		lastUsed:  opts.Now(),
	}
}

// Init moves the controller to Ready and loads the default dataset, if one is
// configured. Later calls do nothing. A failed default load still leaves the
// controller Ready with no data.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.lifecycle == Ready {
		c.mu.Unlock()
		return nil
	}
	c.lifecycle = Ready
	c.mu.Unlock()

	if c.opts.DefaultDataset == "" || c.src == nil {
		return nil
	}
	_, err := c.Load(ctx, c.opts.DefaultDataset)
	return err
}

// Lifecycle returns the initialization state
func (c *Controller) Lifecycle() Lifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lifecycle
}

// BeginLoad issues a ticket for a new load, invalidating all earlier ones
func (c *Controller) BeginLoad() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// commit installs ds if ticket is still the newest load and resets the table
// state for the new dataset.
func (c *Controller) commit(ticket Ticket, ds *models.Dataset, origin string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket != c.generation {
		return fmt.Errorf("%w: load %d replaced by load %d", ErrSuperseded, ticket, c.generation)
	}

	c.dataset = ds
	c.origin = origin
	c.filter = models.FilterState{}
	c.sort = models.SortState{}
	c.page = models.NewPageState(c.opts.PageSize)
	c.lifecycle = Ready
	c.touch()
	return nil
}

// Load fetches a named dataset from the source and makes it current. On any
// failure the previous dataset stays in place.
func (c *Controller) Load(ctx context.Context, name string) (*models.Dataset, error) {
	if c.src == nil {
		return nil, fmt.Errorf("%w: no dataset source configured", source.ErrFetchFailure)
	}

	ticket := c.BeginLoad()
	start := c.opts.Now()

	raw, err := c.src.Fetch(ctx, name)
	if err != nil {
		c.logger.Error("Dataset fetch failed", map[string]interface{}{
			"dataset": name,
			"source":  c.src.Kind(),
			"error":   err.Error(),
		})
		return nil, err
	}

	ds, err := ingest.ParseJSON(raw, c.opts.Now())
	if err != nil {
		c.logger.Error("Dataset rejected", map[string]interface{}{
			"dataset": name,
			"error":   err.Error(),
		})
		return nil, err
	}

	if err := c.commit(ticket, ds, name); err != nil {
		c.logger.Warn("Discarding stale dataset load", map[string]interface{}{
			"dataset": name,
			"ticket":  uint64(ticket),
		})
		return nil, err
	}

	c.logger.Info("Dataset loaded", map[string]interface{}{
		"dataset":  name,
		"source":   c.src.Kind(),
		"records":  ds.Len(),
		"duration": c.opts.Now().Sub(start).String(),
	})
	return ds, nil
}

// LoadBytes ingests an uploaded document and makes it current
func (c *Controller) LoadBytes(_ context.Context, raw []byte, format Format) (*models.Dataset, error) {
	ticket := c.BeginLoad()

	var (
		ds  *models.Dataset
		err error
	)
	switch format {
	case FormatJSON, "":
		ds, err = ingest.ParseJSON(raw, c.opts.Now())
	case FormatHTML:
		ds, err = ingest.ExtractHTML(bytes.NewReader(raw), c.opts.Now())
	default:
		err = fmt.Errorf("%w: unsupported upload format %q", ingest.ErrInvalidFormat, format)
	}
	if err != nil {
		c.logger.Error("Uploaded dataset rejected", map[string]interface{}{
			"format": string(format),
			"bytes":  len(raw),
			"error":  err.Error(),
		})
		return nil, err
	}

	if err := c.commit(ticket, ds, "upload:"+string(format)); err != nil {
		return nil, err
	}

	c.logger.Info("Uploaded dataset loaded", map[string]interface{}{
		"format":  string(format),
		"records": ds.Len(),
	})
	return ds, nil
}

// Dataset returns the current dataset, or nil before the first load
func (c *Controller) Dataset() *models.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// Origin names where the current dataset came from
func (c *Controller) Origin() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin
}

// Filter returns the active filter
func (c *Controller) Filter() models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetFilter replaces the filter. A changed filter returns to page 1.
func (c *Controller) SetFilter(filter models.FilterState) table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if filter != c.filter {
		c.filter = filter
		c.page.CurrentPage = 1
	}
	c.touch()
	return c.pageLocked()
}

// Sort returns the active sort
func (c *Controller) Sort() models.SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// ToggleSort sorts by column, flipping the direction when column is already
// active. A new column starts ascending.
func (c *Controller) ToggleSort(column models.Field) table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sort.Column == column {
		if c.sort.Normalized().Direction == models.Asc {
			c.sort.Direction = models.Desc
		} else {
			c.sort.Direction = models.Asc
		}
	} else {
		c.sort = models.SortState{Column: column, Direction: models.Asc}
	}
	c.page.CurrentPage = 1
	c.touch()
	return c.pageLocked()
}

// SetSort replaces the sort. A changed sort returns to page 1.
func (c *Controller) SetSort(s models.SortState) table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.IsNone() {
		s = s.Normalized()
	}
	if s != c.sort {
		c.sort = s
		c.page.CurrentPage = 1
	}
	c.touch()
	return c.pageLocked()
}

// View is the current dataset filtered and sorted by the active state
func (c *Controller) View() []models.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Page returns the visible page of the current view
func (c *Controller) Page() table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.pageLocked()
}

// NextPage advances one page, stopping at the last
func (c *Controller) NextPage() table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = table.Next(c.page, len(c.viewLocked()))
	c.touch()
	return c.pageLocked()
}

// PrevPage goes back one page, stopping at the first
func (c *Controller) PrevPage() table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = table.Prev(c.page, len(c.viewLocked()))
	c.touch()
	return c.pageLocked()
}

// GoToPage jumps to page n, clamped to the available pages
func (c *Controller) GoToPage(n int) table.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page.CurrentPage = n
	c.page = table.Clamp(c.page, len(c.viewLocked()))
	c.touch()
	return c.pageLocked()
}

// KPIs computes the headline numbers over the full dataset. An empty location
// uses the configured focus.
func (c *Controller) KPIs(location string) models.KPIs {
	if location == "" {
		location = c.opts.LocationFocus
	}
	return aggregate.BuildKPIs(c.records(), location)
}

// Charts computes the chart series over the full dataset. n <= 0 uses the
// configured top-N.
func (c *Controller) Charts(n int) models.Charts {
	if n <= 0 {
		n = c.opts.TopN
	}
	return aggregate.BuildCharts(c.records(), n)
}

// Export renders the current view as CSV
func (c *Controller) Export() (string, error) {
	view := c.View()
	csv, err := exporter.ToCSV(view)
	if err != nil {
		c.logger.Info("Export skipped, no rows in view")
		return "", err
	}
	c.logger.Info("CSV export generated", map[string]interface{}{
		"rows": len(view),
	})
	return csv, nil
}

// LastUsed is the time of the last state change or read of the table
func (c *Controller) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Response assembles a table page for API and CLI output
func (c *Controller) Response(res table.PageResult) models.PageResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.PageResponse{
		Items:      res.Items,
		Page:       res.State,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		Start:      res.Start,
		End:        res.End,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		Filter:     c.filter,
		Sort:       c.sort,
	}
}

func (c *Controller) records() []models.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	if c.dataset == nil {
		return nil
	}
	return c.dataset.Applications
}

func (c *Controller) viewLocked() []models.Application {
	var records []models.Application
	if c.dataset != nil {
		records = c.dataset.Applications
	}
	return table.Apply(records, c.filter, c.sort)
}

func (c *Controller) pageLocked() table.PageResult {
	res := table.Page(c.viewLocked(), c.page)
	c.page = res.State
	return res
}

func (c *Controller) touch() {
	c.lastUsed = c.opts.Now()
}
