package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/mykafka"
	"github.com/stylehub/storefront/internal/storage"
)

type CartHandler struct {
	Store    storage.Store
	Producer mykafka.Publisher
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.Store.CartItems(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type addToCartRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
	Quantity  int `json:"quantity"`
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	item, err := h.Store.AddToCart(c.Request().Context(), models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(userID), map[string]interface{}{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusCreated, item)
}

type updateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req updateCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.Store.UpdateCartQuantity(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(userID), map[string]interface{}{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	removed, err := h.Store.RemoveFromCart(c.Request().Context(), userID, productID)
	if err != nil {
		return httpError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(userID), map[string]interface{}{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})

	return c.NoContent(http.StatusNoContent)
}
