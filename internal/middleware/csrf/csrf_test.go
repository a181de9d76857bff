package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cfg Config, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := Middleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func tokenFrom(rec *httptest.ResponseRecorder, name string) string {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func TestGetIssuesToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err := run(t, Config{}, req)
	require.NoError(t, err)

	token := tokenFrom(rec, "XSRF-TOKEN")
	require.NotEmpty(t, token)
	require.Equal(t, token, rec.Header().Get("X-CSRF-Token"))
}

func TestPostRequiresMatchingHeader(t *testing.T) {
	// Seed a token with a GET first.
	rec, err := run(t, Config{}, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token := tokenFrom(rec, "XSRF-TOKEN")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	req.Header.Set("X-CSRF-Token", token)
	rec, err = run(t, Config{}, req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostWithoutHeaderFails(t *testing.T) {
	rec, err := run(t, Config{}, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token := tokenFrom(rec, "XSRF-TOKEN")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	_, err = run(t, Config{}, req)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestPostCrossOriginFails(t *testing.T) {
	rec, err := run(t, Config{}, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token := tokenFrom(rec, "XSRF-TOKEN")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	req.Header.Set("X-CSRF-Token", token)
	_, err = run(t, Config{}, req)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestSkipPathsBypassCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/health/live", nil)
	rec, err := run(t, Config{SkipPaths: []string{"/health/live"}}, req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}
