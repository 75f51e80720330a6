package models

import "time"

// Count is a single key/occurrence pair of an aggregate
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// KPIs are the headline numbers of the dashboard
type KPIs struct {
	Total        int    `json:"total"`
	ResponseRate string `json:"response_rate"`
	LocationRate string `json:"location_rate"`
	Location     string `json:"location"`
}

// Charts holds chart-ready aggregates
type Charts struct {
	Status       []Count `json:"status"`
	TopLocations []Count `json:"top_locations"`
	TopTitles    []Count `json:"top_titles"`
	Timeline     []Count `json:"timeline"`
}

// PageResponse is the visible slice of the filtered view
type PageResponse struct {
	Items      []Application `json:"items"`
	Page       PageState     `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	Start      int           `json:"start"`
	End        int           `json:"end"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	Filter     FilterState   `json:"filter"`
	Sort       SortState     `json:"sort"`
}

// LoadResponse reports a completed dataset load
type LoadResponse struct {
	Success   bool   `json:"success"`
	Source    string `json:"source"`
	Total     int    `json:"total"`
	Meta      *Meta  `json:"meta,omitempty"`
	RequestID string `json:"request_id"`
}

// PublishResponse reports an uploaded CSV export
type PublishResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	Rows      int    `json:"rows"`
	RequestID string `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
