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

type OrderHandler struct {
	Store    storage.Store
	Producer mykafka.Publisher
}

// GetOrders lists the caller's orders, or every order for an admin.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var (
		orders []storage.OrderWithItems
		oerr   error
	)
	if isAdmin(c) {
		orders, oerr = h.Store.Orders(ctx)
	} else {
		orders, oerr = h.Store.OrdersByUser(ctx, userID)
	}
	if oerr != nil {
		return httpError(oerr)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Store.OrderByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !isAdmin(c) && order.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}
	return c.JSON(http.StatusOK, order)
}

type createOrderRequest struct {
	Total float64                  `json:"total" validate:"required,gt=0"`
	Items []storage.OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder is called by the client after the payment provider reports a
// succeeded intent. The total is stored exactly as supplied; the server does
// not recompute it from the item lines.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	order, err := h.Store.CreateOrder(ctx, models.Order{
		UserID: userID,
		Total:  req.Total,
		Status: "processing",
	}, req.Items)
	if err != nil {
		return httpError(err)
	}

	if err := h.Store.ClearCart(ctx, userID); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(userID), map[string]interface{}{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusCreated, order)
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus accepts any non-empty status string; there is no enforced
// transition graph.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.Store.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(order.UserID), map[string]interface{}{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, order)
}
