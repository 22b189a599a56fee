package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djajbladi-console/internal/client"
	"djajbladi-console/internal/model"
	"djajbladi-console/internal/tokenstore"
)

func newAuthFixture(t *testing.T) (*AuthHandler, *tokenstore.Store) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(model.JwtResponse{
				Token:        "access-token",
				RefreshToken: "refresh-token",
				Type:         "Bearer",
				Email:        "admin@djajbladi.ma",
				Role:         model.RoleAdmin,
			})
		case "/auth/refresh":
			var req model.RefreshRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(model.JwtResponse{
				Token:        "access-token-2",
				RefreshToken: "refresh-token-2",
				Type:         "Bearer",
				Email:        "admin@djajbladi.ma",
				Role:         model.RoleAdmin,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	sessionTier := tokenstore.NewMemoryTier()
	durableTier := tokenstore.NewMemoryTier()
	t.Cleanup(sessionTier.Close)
	t.Cleanup(durableTier.Close)

	store := tokenstore.New(sessionTier, durableTier, time.Hour, time.Hour)
	cookie := CookieConfig{Name: "djajbladi_session", RememberAge: 7 * 24 * time.Hour}
	return NewAuthHandler(client.New(backend.URL, time.Second), store, nil, cookie), store
}

func doLogin(t *testing.T, h *AuthHandler, remember bool) *http.Cookie {
	t.Helper()

	body := `{"email":"admin@djajbladi.ma","password":"password123","remember":` + jsonBool(remember) + `}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Login(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == "djajbladi_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func jsonBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func TestAuthHandler_LoginCookieLifetime(t *testing.T) {
	t.Run("remember sets a persistent cookie", func(t *testing.T) {
		h, _ := newAuthFixture(t)
		cookie := doLogin(t, h, true)

		assert.Greater(t, cookie.MaxAge, 0)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	})

	t.Run("without remember the cookie is session-scoped", func(t *testing.T) {
		h, _ := newAuthFixture(t)
		cookie := doLogin(t, h, false)

		assert.Equal(t, 0, cookie.MaxAge)
	})
}

func TestAuthHandler_EachLoginMintsAFreshSession(t *testing.T) {
	h, _ := newAuthFixture(t)

	first := doLogin(t, h, false)
	second := doLogin(t, h, false)

	assert.NotEqual(t, first.Value, second.Value)
}

func TestAuthHandler_RefreshPreservesRememberChoice(t *testing.T) {
	ctx := context.Background()

	t.Run("remembered login stays durable after refresh", func(t *testing.T) {
		h, store := newAuthFixture(t)
		cookie := doLogin(t, h, true)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader("{}"))
		r.AddCookie(cookie)
		w := httptest.NewRecorder()
		h.Refresh(w, r)
		require.Equal(t, http.StatusOK, w.Code)

		remembered, err := store.Remembered(ctx, cookie.Value)
		require.NoError(t, err)
		assert.True(t, remembered)

		access, err := store.AccessToken(ctx, cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "access-token-2", access)
	})

	t.Run("session-only login stays session-only", func(t *testing.T) {
		h, store := newAuthFixture(t)
		cookie := doLogin(t, h, false)

		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader("{}"))
		r.AddCookie(cookie)
		w := httptest.NewRecorder()
		h.Refresh(w, r)
		require.Equal(t, http.StatusOK, w.Code)

		remembered, err := store.Remembered(ctx, cookie.Value)
		require.NoError(t, err)
		assert.False(t, remembered)
	})
}

func TestAuthHandler_RefreshWithoutSession(t *testing.T) {
	h, _ := newAuthFixture(t)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	h.Refresh(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	h, store := newAuthFixture(t)
	cookie := doLogin(t, h, true)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Logout(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)

	access, err := store.AccessToken(ctx, cookie.Value)
	require.NoError(t, err)
	assert.Empty(t, access)

	var dropped *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "djajbladi_session" {
			dropped = c
		}
	}
	require.NotNil(t, dropped)
	assert.Negative(t, dropped.MaxAge)
}
