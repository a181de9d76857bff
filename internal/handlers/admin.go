package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/storage"
)

type AdminHandler struct {
	Store storage.Store
}

// GetStats serves the dashboard summary: sales and order totals, catalog and
// customer counts, and the five most recent orders.
func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.Store.AdminStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
