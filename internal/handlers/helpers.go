package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/mykafka"
	"github.com/stylehub/storefront/internal/service/token"
	"github.com/stylehub/storefront/internal/storage"
)

// httpError maps the store's error set onto response codes. Anything
// unrecognized becomes a 500.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	switch {
	case errors.Is(err, storage.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrIntegrity):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
}

func currentUserID(c echo.Context) (int, error) {
	id, ok := c.Get("userID").(int)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "please login")
	}
	return id, nil
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == token.RoleAdmin
}

// publish fires a domain event; failures are logged, never surfaced to the
// client.
func publish(c echo.Context, producer mykafka.Publisher, topic, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
