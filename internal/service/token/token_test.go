package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/stylehub/storefront/internal/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Store:         storage.NewMemoryStore(),
		JWTSecret:     []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func parseClaims(t *testing.T, raw string, secret []byte) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestSignAccessToken(t *testing.T) {
	svc := newService(t)

	raw, err := svc.SignAccessToken(7, RoleAdmin)
	require.NoError(t, err)

	claims := parseClaims(t, raw, svc.JWTSecret)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, RoleAdmin, claims["role"])
	require.NotContains(t, claims, "typ")
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	raw, err := svc.SignRefreshToken(ctx, 7, RoleUser)
	require.NoError(t, err)

	claims, err := svc.ValidateRefresh(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, "refresh", claims["typ"])
}

func TestValidateRefreshRejectsAccessToken(t *testing.T) {
	svc := newService(t)

	// An access token signed with the refresh secret still lacks the typ
	// claim and must be rejected.
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"role": RoleUser,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.RefreshSecret)
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(context.Background(), raw)
	require.Error(t, err)
}

func TestValidateRefreshRejectsUnknownToken(t *testing.T) {
	svc := newService(t)

	claims := jwt.MapClaims{
		"sub":  float64(7),
		"role": RoleUser,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"typ":  "refresh",
	}
	// Valid signature, but never persisted by the service.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.RefreshSecret)
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(context.Background(), raw)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRotateRevokesOldToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	old, err := svc.SignRefreshToken(ctx, 7, RoleUser)
	require.NoError(t, err)

	access, refresh, claims, err := svc.Rotate(ctx, old)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.NotEqual(t, old, refresh)
	require.Equal(t, float64(7), claims["sub"])

	// The old token is single-use.
	_, _, _, err = svc.Rotate(ctx, old)
	require.Error(t, err)

	// The new one still works.
	_, err = svc.ValidateRefresh(ctx, refresh)
	require.NoError(t, err)
}

func doAuthed(t *testing.T, mw echo.MiddlewareFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"userID": c.Get("userID"),
			"role":   c.Get("role"),
		})
	})
	return rec, handler(c)
}

func TestRequireUserWithAccessCookie(t *testing.T) {
	svc := newService(t)

	access, err := svc.SignAccessToken(7, RoleUser)
	require.NoError(t, err)

	rec, err := doAuthed(t, svc.RequireUser,
		&http.Cookie{Name: AccessCookie, Value: access})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"userID":7`)
}

func TestRequireUserWithoutCookies(t *testing.T) {
	svc := newService(t)

	_, err := doAuthed(t, svc.RequireUser)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireUserRotatesExpiredAccess(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(7),
		"role": RoleUser,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}).SignedString(svc.JWTSecret)
	require.NoError(t, err)

	refresh, err := svc.SignRefreshToken(ctx, 7, RoleUser)
	require.NoError(t, err)

	rec, err := doAuthed(t, svc.RequireUser,
		&http.Cookie{Name: AccessCookie, Value: expired},
		&http.Cookie{Name: RefreshCookie, Value: refresh})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	res := rec.Result()
	names := make(map[string]bool)
	for _, ck := range res.Cookies() {
		names[ck.Name] = true
	}
	require.True(t, names[AccessCookie])
	require.True(t, names[RefreshCookie])

	// The consumed refresh token is revoked by the rotation.
	_, err = svc.ValidateRefresh(ctx, refresh)
	require.Error(t, err)
}

func TestRequireUserRejectsTamperedAccess(t *testing.T) {
	svc := newService(t)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(7),
		"role": RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	_, err = doAuthed(t, svc.RequireUser,
		&http.Cookie{Name: AccessCookie, Value: forged})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := newService(t)

	userAccess, err := svc.SignAccessToken(7, RoleUser)
	require.NoError(t, err)

	_, err = doAuthed(t, svc.RequireAdmin,
		&http.Cookie{Name: AccessCookie, Value: userAccess})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Code)

	adminAccess, err := svc.SignAccessToken(1, RoleAdmin)
	require.NoError(t, err)

	rec, err := doAuthed(t, svc.RequireAdmin,
		&http.Cookie{Name: AccessCookie, Value: adminAccess})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}
