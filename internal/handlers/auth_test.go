package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/service/token"
)

func TestRegister(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}

	c, rec := v.request(http.MethodPost, "/api/register",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	decodeBody(t, rec, &user)
	require.Equal(t, 1, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, models.FilteredPassword, user.Password)
	require.False(t, user.IsAdmin)
}

func TestRegisterValidation(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}

	cases := []string{
		`{"username":"ab","email":"a@b.com","password":"secret1"}`,
		`{"username":"alice","email":"not-an-email","password":"secret1"}`,
		`{"username":"alice","email":"a@b.com","password":"short"}`,
	}
	for _, body := range cases {
		c, _ := v.request(http.MethodPost, "/api/register", body, 0, "")
		requireHTTPError(t, h.Register(c), http.StatusBadRequest)
	}
}

func TestRegisterDuplicatesAreCaseInsensitive(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}
	v.seedUser(t, "alice", "secret1", false)

	c, _ := v.request(http.MethodPost, "/api/register",
		`{"username":"ALICE","email":"other@example.com","password":"secret1"}`, 0, "")
	requireHTTPError(t, h.Register(c), http.StatusBadRequest)

	c, _ = v.request(http.MethodPost, "/api/register",
		`{"username":"bob","email":"ALICE@example.com","password":"secret1"}`, 0, "")
	requireHTTPError(t, h.Register(c), http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}
	v.seedUser(t, "alice", "secret1", false)

	c, rec := v.request(http.MethodPost, "/api/login",
		`{"username":"alice","password":"secret1"}`, 0, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User    models.User `json:"user"`
		IsAdmin bool        `json:"is_admin"`
	}
	decodeBody(t, rec, &body)
	require.Equal(t, "alice", body.User.Username)
	require.Equal(t, models.FilteredPassword, body.User.Password)
	require.False(t, body.IsAdmin)

	names := make(map[string]bool)
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = true
		require.True(t, ck.HttpOnly)
	}
	require.True(t, names[token.AccessCookie])
	require.True(t, names[token.RefreshCookie])
}

func TestLoginInvalidCredentials(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}
	v.seedUser(t, "alice", "secret1", false)

	c, _ := v.request(http.MethodPost, "/api/login",
		`{"username":"alice","password":"wrong"}`, 0, "")
	requireHTTPError(t, h.Login(c), http.StatusUnauthorized)

	// An unknown username gets the same answer as a bad password.
	c, _ = v.request(http.MethodPost, "/api/login",
		`{"username":"nobody","password":"secret1"}`, 0, "")
	requireHTTPError(t, h.Login(c), http.StatusUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}
	u := v.seedUser(t, "alice", "secret1", false)

	refresh, err := v.tokens.SignRefreshToken(t.Context(), u.ID, token.RoleUser)
	require.NoError(t, err)

	c, rec := v.request(http.MethodPost, "/api/logout", "", 0, "")
	c.Request().AddCookie(&http.Cookie{Name: token.RefreshCookie, Value: refresh})
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := v.store.RefreshTokenByValue(t.Context(), refresh)
	require.NoError(t, err)
	require.True(t, stored.Revoked)

	for _, ck := range rec.Result().Cookies() {
		require.Empty(t, ck.Value)
	}
}

func TestCurrentUser(t *testing.T) {
	v := newEnv(t)
	h := &AuthHandler{Store: v.store, Tokens: v.tokens, Producer: noop}
	u := v.seedUser(t, "alice", "secret1", false)

	c, rec := v.request(http.MethodGet, "/api/user", "", u.ID, token.RoleUser)
	require.NoError(t, h.CurrentUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	decodeBody(t, rec, &got)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, models.FilteredPassword, got.Password)

	c, _ = v.request(http.MethodGet, "/api/user", "", 0, "")
	requireHTTPError(t, h.CurrentUser(c), http.StatusUnauthorized)
}
