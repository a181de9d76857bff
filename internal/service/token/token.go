// Package token issues and rotates the JWT cookie pair that carries a
// session: a short-lived access token and a store-backed, revocable refresh
// token.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/storage"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour

	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Service struct {
	Store         storage.Store
	JWTSecret     []byte
	RefreshSecret []byte
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Service) SignAccessToken(userID int, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.JWTSecret)
}

// SignRefreshToken signs a refresh token and persists it so it can be
// revoked on logout. The jti claim keeps tokens minted within the same
// second distinct, so rotation never revokes its own replacement.
func (s *Service) SignRefreshToken(ctx context.Context, userID int, role string) (string, error) {
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", err
	}

	exp := time.Now().Add(RefreshTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"typ":  "refresh",
		"jti":  hex.EncodeToString(jti),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.RefreshSecret)
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		Token:     signed,
		UserID:    userID,
		ExpiresAt: exp.Unix(),
		Revoked:   false,
	}
	if err := s.Store.CreateRefreshToken(ctx, record); err != nil {
		return "", err
	}
	return signed, nil
}

func (s *Service) ValidateRefresh(ctx context.Context, raw string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.RefreshSecret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	stored, err := s.Store.RefreshTokenByValue(ctx, raw)
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}

	return claims, nil
}

// Rotate exchanges a valid refresh token for a fresh access/refresh pair.
func (s *Service) Rotate(ctx context.Context, raw string) (string, string, jwt.MapClaims, error) {
	claims, err := s.ValidateRefresh(ctx, raw)
	if err != nil {
		return "", "", nil, err
	}

	userID := int(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	newAccess, err := s.SignAccessToken(userID, role)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := s.SignRefreshToken(ctx, userID, role)
	if err != nil {
		return "", "", nil, err
	}
	if err := s.Store.RevokeRefreshToken(ctx, raw); err != nil {
		return "", "", nil, err
	}

	return newAccess, newRefresh, claims, nil
}

// checkCookie validates the access cookie, falling back to refresh rotation
// when the access token has expired. Returns the claims to stash on the
// request plus the new pair when one was minted.
func (s *Service) checkCookie(c echo.Context) (jwt.MapClaims, string, string, error) {
	if cookie, err := c.Cookie(AccessCookie); err == nil {
		t, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.JWTSecret, nil
		})
		if err == nil && t.Valid {
			claims, ok := t.Claims.(jwt.MapClaims)
			if !ok {
				return nil, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			return claims, "", "", nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
	}

	rfCookie, err := c.Cookie(RefreshCookie)
	if err != nil {
		return nil, "", "", echo.NewHTTPError(http.StatusUnauthorized, "please login")
	}
	newAccess, newRefresh, claims, err := s.Rotate(c.Request().Context(), rfCookie.Value)
	if err != nil {
		return nil, "", "", echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token")
	}
	return claims, newAccess, newRefresh, nil
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	sub, _ := claims["sub"].(float64)
	role, _ := claims["role"].(string)
	c.Set("userID", int(sub))
	c.Set("role", role)
}

// RequireUser authenticates the request, rotating the cookie pair when the
// access token has expired.
func (s *Service) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, newAccess, newRefresh, err := s.checkCookie(c)
		if err != nil {
			return err
		}
		if newRefresh != "" {
			c.SetCookie(CreateCookie(AccessCookie, newAccess, "/", time.Now().Add(AccessTTL)))
			c.SetCookie(CreateCookie(RefreshCookie, newRefresh, "/", time.Now().Add(RefreshTTL)))
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// RequireAdmin is RequireUser plus an admin role check.
func (s *Service) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return s.RequireUser(func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}
