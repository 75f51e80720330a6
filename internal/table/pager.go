package table

import "appdash/pkg/models"

// PageResult is one visible page of a filtered view
type PageResult struct {
	Items      []models.Application
	State      models.PageState
	TotalPages int
	Total      int
	// Start and End are the 1-based positions of the first and last visible
	// rows, both 0 for an empty view.
	Start   int
	End     int
	HasPrev bool
	HasNext bool
}

// TotalPages is the page count for n rows, never less than 1
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp keeps the current page within [1, TotalPages] for n rows
func Clamp(state models.PageState, n int) models.PageState {
	if state.PageSize <= 0 {
		state.PageSize = models.DefaultPageSize
	}
	last := TotalPages(n, state.PageSize)
	if state.CurrentPage > last {
		state.CurrentPage = last
	}
	if state.CurrentPage < 1 {
		state.CurrentPage = 1
	}
	return state
}

// Next advances one page, staying on the last page of n rows
func Next(state models.PageState, n int) models.PageState {
	state.CurrentPage++
	return Clamp(state, n)
}

// Prev goes back one page, staying on page 1
func Prev(state models.PageState, n int) models.PageState {
	state.CurrentPage--
	return Clamp(state, n)
}

// Page slices the visible rows of view for state
func Page(view []models.Application, state models.PageState) PageResult {
	state = Clamp(state, len(view))
	total := len(view)
	pages := TotalPages(total, state.PageSize)

	start := (state.CurrentPage - 1) * state.PageSize
	end := start + state.PageSize
	if end > total {
		end = total
	}

	items := make([]models.Application, end-start)
	copy(items, view[start:end])

	result := PageResult{
		Items:      items,
		State:      state,
		TotalPages: pages,
		Total:      total,
		HasPrev:    state.CurrentPage > 1,
		HasNext:    state.CurrentPage < pages,
	}
	if total > 0 {
		result.Start = start + 1
		result.End = end
	}
	return result
}
