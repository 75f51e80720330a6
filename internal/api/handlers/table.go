package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"appdash/internal/dashboard"
	"appdash/internal/table"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

var filterParams = []string{"dateStart", "dateEnd", "status", "title", "company", "location"}

// GetTableHandler handles GET /api/v1/table. Filter, sort and page query
// parameters, when present, update the session state before paging.
func GetTableHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)

		var q models.TableQuery
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
			return respondError(c, utils.NewBadRequestError("Invalid query parameters: "+err.Error()))
		}
		if err := requestValidator.Struct(&q); err != nil {
			return respondError(c, utils.NewValidationError(err.Error()))
		}

		params := c.QueryParams()
		for _, name := range filterParams {
			if params.Has(name) {
				ctrl.SetFilter(q.FilterState)
				break
			}
		}
		if params.Has("sort") {
			ctrl.SetSort(q.SortState)
		}

		var res table.PageResult
		if q.Page > 0 {
			res = ctrl.GoToPage(q.Page)
		} else {
			res = ctrl.Page()
		}
		return c.JSON(http.StatusOK, ctrl.Response(res))
	}
}

// SetFiltersHandler handles PUT /api/v1/table/filters
func SetFiltersHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)

		var filter models.FilterState
		if err := bindAndValidate(c, &filter); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, ctrl.Response(ctrl.SetFilter(filter)))
	}
}

// ToggleSortHandler handles POST /api/v1/table/sort
func ToggleSortHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)

		var req models.SortToggleRequest
		if err := bindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, ctrl.Response(ctrl.ToggleSort(req.Column)))
	}
}

// NextPageHandler handles POST /api/v1/table/page/next
func NextPageHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)
		return c.JSON(http.StatusOK, ctrl.Response(ctrl.NextPage()))
	}
}

// PrevPageHandler handles POST /api/v1/table/page/prev
func PrevPageHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)
		return c.JSON(http.StatusOK, ctrl.Response(ctrl.PrevPage()))
	}
}

// SetPageHandler handles PUT /api/v1/table/page
func SetPageHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)

		var req models.PageRequest
		if err := bindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, ctrl.Response(ctrl.GoToPage(req.Page)))
	}
}
