package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/storage"
)

type CategoryHandler struct {
	Store storage.Store
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.Store.Categories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// GetCategoryProducts returns an empty list for an unknown slug, not a 404.
func (h *CategoryHandler) GetCategoryProducts(c echo.Context) error {
	products, err := h.Store.ProductsByCategorySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, products)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	// Slug uniqueness is a lookup-then-insert, not a store constraint.
	if _, err := h.Store.CategoryBySlug(ctx, req.Slug); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "slug already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return httpError(err)
	}

	category, err := h.Store.CreateCategory(ctx, models.Category{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, category)
}
