package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/service/search"
	"github.com/stylehub/storefront/internal/util"
)

type SearchHandler struct {
	Search *search.Service
}

func (h *SearchHandler) Handler(c echo.Context) error {
	if h.Search == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, products, err := h.Search.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
