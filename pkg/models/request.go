package models

// DefaultPageSize is the number of rows shown per table page
const DefaultPageSize = 10

// FilterState holds the current table filters. An empty value places no
// constraint on its field.
type FilterState struct {
	DateStart string `json:"dateStart" query:"dateStart" validate:"omitempty,canonical_date"`
	DateEnd   string `json:"dateEnd" query:"dateEnd" validate:"omitempty,canonical_date"`
	Status    string `json:"status" query:"status" validate:"max=200"`
	Title     string `json:"title" query:"title" validate:"max=200"`
	Company   string `json:"company" query:"company" validate:"max=200"`
	Location  string `json:"location" query:"location" validate:"max=200"`
}

// IsEmpty reports whether no filter is active
func (f FilterState) IsEmpty() bool {
	return f == FilterState{}
}

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the active sort column and direction. An empty Column keeps
// the dataset order.
type SortState struct {
	Column    Field     `json:"column" query:"sort" validate:"omitempty,sort_column"`
	Direction Direction `json:"direction" query:"direction" validate:"omitempty,oneof=asc desc"`
}

// IsNone reports whether no sort column is active
func (s SortState) IsNone() bool {
	return s.Column == ""
}

// Normalized fills in the default direction
func (s SortState) Normalized() SortState {
	if s.Direction != Desc {
		s.Direction = Asc
	}
	return s
}

// PageState is the pagination position within the current filtered view
type PageState struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// NewPageState returns page 1 with the given size
func NewPageState(pageSize int) PageState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return PageState{CurrentPage: 1, PageSize: pageSize}
}

// LoadDatasetRequest asks the dashboard to load a named dataset from its source
type LoadDatasetRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// SortToggleRequest mimics a click on a sortable column header
type SortToggleRequest struct {
	Column Field `json:"column" validate:"required,sort_column"`
}

// PageRequest jumps to a specific page
type PageRequest struct {
	Page int `json:"page" validate:"required,min=1"`
}

// TableQuery is the optional query-string form of the table state
type TableQuery struct {
	FilterState
	SortState
	Page int `query:"page" validate:"omitempty,min=1"`
}
