package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/payment"
)

type PaymentHandler struct {
	// Provider is nil when no payment key is configured.
	Provider payment.Provider
}

type paymentIntentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// CreateIntent forwards the amount to the payment provider and relays the
// client secret. Confirmation happens on the client against the provider.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	if h.Provider == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "payments not configured")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	secret, err := h.Provider.CreateIntent(c.Request().Context(), req.Amount, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"clientSecret": secret})
}
