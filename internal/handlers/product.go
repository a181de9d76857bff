package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/mykafka"
	"github.com/stylehub/storefront/internal/service/search"
	"github.com/stylehub/storefront/internal/storage"
	"github.com/stylehub/storefront/internal/util"
)

type ProductHandler struct {
	Store    storage.Store
	Producer mykafka.Publisher
	// Search is nil when Elasticsearch is not configured.
	Search *search.Service
}

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl" validate:"required"`
	CategoryID  int     `json:"categoryId" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Color       string  `json:"color"`
	Material    string  `json:"material"`
}

func (r productRequest) model() models.Product {
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		CategoryID:  r.CategoryID,
		Stock:       r.Stock,
		Color:       r.Color,
		Material:    r.Material,
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, err := h.Store.Products(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	total := len(products)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := products[offset:end]

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": items,
		"meta": map[string]interface{}{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + limit - 1) / limit,
			"has_prev":    page > 1,
			"has_next":    end < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	product, err := h.Store.ProductByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Store.CreateProduct(c.Request().Context(), req.model())
	if err != nil {
		return httpError(err)
	}

	h.index(c, *product)
	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]interface{}{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Store.UpdateProduct(c.Request().Context(), id, req.model())
	if err != nil {
		return httpError(err)
	}

	h.index(c, *product)
	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]interface{}{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	deleted, err := h.Store.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if h.Search != nil {
		if err := h.Search.DeleteProduct(c.Request().Context(), id); err != nil {
			c.Logger().Errorf("search deindex error: %v", err)
		}
	}
	publish(c, h.Producer, "product_events", fmt.Sprint(id), map[string]interface{}{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) index(c echo.Context, p models.Product) {
	if h.Search == nil {
		return
	}
	if err := h.Search.IndexProduct(c.Request().Context(), p); err != nil {
		c.Logger().Errorf("search index error: %v", err)
	}
}
