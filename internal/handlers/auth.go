package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/hash"
	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/mykafka"
	"github.com/stylehub/storefront/internal/service/token"
	"github.com/stylehub/storefront/internal/storage"
)

type AuthHandler struct {
	Store    storage.Store
	Tokens   *token.Service
	Producer mykafka.Publisher
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	// Uniqueness is checked case-insensitively before insert.
	if _, err := h.Store.UserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "username already taken")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return httpError(err)
	}
	if _, err := h.Store.UserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return httpError(err)
	}

	user, err := h.Store.CreateUser(ctx, models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  false,
	})
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.Store.UserByUsername(ctx, req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.Password, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	role := token.RoleUser
	if user.IsAdmin {
		role = token.RoleAdmin
	}

	access, err := h.Tokens.SignAccessToken(user.ID, role)
	if err != nil {
		return httpError(err)
	}
	refresh, err := h.Tokens.SignRefreshToken(ctx, user.ID, role)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(token.CreateCookie(token.AccessCookie, access, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie(token.RefreshCookie, refresh, "/", time.Now().Add(token.RefreshTTL)))

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":     user.Sanitized(),
		"is_admin": user.IsAdmin,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if rfCookie, err := c.Cookie(token.RefreshCookie); err == nil {
		if err := h.Store.RevokeRefreshToken(c.Request().Context(), rfCookie.Value); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return httpError(err)
		}
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie(token.AccessCookie, "", "/", expired))
	c.SetCookie(token.CreateCookie(token.RefreshCookie, "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.Store.UserByID(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user.Sanitized())
}
