package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"djajbladi-console/internal/client"
	"djajbladi-console/internal/config"
	"djajbladi-console/internal/event"
	"djajbladi-console/internal/handler"
	"djajbladi-console/internal/middleware"
	"djajbladi-console/internal/model"
	"djajbladi-console/internal/router"
	"djajbladi-console/internal/service"
	"djajbladi-console/internal/session"
	"djajbladi-console/internal/tokenstore"
)

const (
	cookieName = "djajbladi_session"
	signingKey = "backend-signing-key"
)

// stubBackend plays the DjajBladi API: it signs real tokens and records the
// Authorization headers it sees, so tests can assert what the console
// forwarded.
type stubBackend struct {
	mu sync.Mutex

	loginRole     string
	loginTokenTTL time.Duration

	buildings []model.Building
	batches   []model.Batch

	authHeaders   []string
	batchCreates  int
	lastLoginBody map[string]any
}

func newStubBackend() *stubBackend {
	return &stubBackend{loginRole: model.RoleAdmin, loginTokenTTL: time.Hour}
}

func (s *stubBackend) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		s.mu.Lock()
		s.lastLoginBody = body
		role := s.loginRole
		ttl := s.loginTokenTTL
		s.mu.Unlock()

		email, _ := body["email"].(string)
		writeBody(t, w, http.StatusOK, model.JwtResponse{
			Token:        mintBackendToken(t, email, role, time.Now().Add(ttl)),
			RefreshToken: "refresh-" + email,
			Type:         "Bearer",
			Email:        email,
			Role:         role,
		})
	})

	mux.HandleFunc("GET /admin/buildings", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.mu.Lock()
		defer s.mu.Unlock()
		writeBody(t, w, http.StatusOK, s.buildings)
	})

	mux.HandleFunc("GET /admin/buildings/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, b := range s.buildings {
			if strconv.FormatInt(b.ID, 10) == r.PathValue("id") {
				writeBody(t, w, http.StatusOK, b)
				return
			}
		}
		writeBody(t, w, http.StatusNotFound, model.ErrorResponse{Error: "building not found"})
	})

	mux.HandleFunc("GET /admin/batches", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.mu.Lock()
		defer s.mu.Unlock()
		writeBody(t, w, http.StatusOK, s.batches)
	})

	mux.HandleFunc("POST /admin/batches", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.mu.Lock()
		s.batchCreates++
		s.mu.Unlock()

		var req model.CreateBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeBody(t, w, http.StatusCreated, model.Batch{
			ID:           99,
			BatchNumber:  req.BatchNumber,
			Strain:       req.Strain,
			ChickenCount: req.ChickenCount,
			BuildingID:   req.BuildingID,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *stubBackend) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
}

func (s *stubBackend) lastAuthHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.authHeaders) == 0 {
		return ""
	}
	return s.authHeaders[len(s.authHeaders)-1]
}

func writeBody(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func mintBackendToken(t *testing.T, email string, role string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return raw
}

// newConsole wires the full gateway stack against the stub backend, the way
// app.New does but on in-memory tiers, and serves it over httptest.
func newConsole(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:        "0",
		RequestTimeout:    5 * time.Second,
		BackendBaseURL:    backendURL,
		BackendTimeout:    5 * time.Second,
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   time.Hour,
		SessionCookieName: cookieName,
		LoginPath:         "/login",
		DashboardPath:     "/dashboard",
		WatchInterval:     20 * time.Millisecond,
		RateLimitRPM:      1000,
		AuthRateLimitRPM:  1000,
	}

	sessionTier := tokenstore.NewMemoryTier()
	durableTier := tokenstore.NewMemoryTier()
	t.Cleanup(sessionTier.Close)
	t.Cleanup(durableTier.Close)

	store := tokenstore.New(sessionTier, durableTier, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	resolver := session.NewResolver(store)
	bus := event.NewBus()

	backend := client.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	capacity := service.NewCapacityValidator(backend)
	watcher := session.NewWatcher(resolver, store, bus, cfg.WatchInterval)
	guard := middleware.NewGuard(resolver, store, cfg.SessionCookieName, cfg.LoginPath, cfg.DashboardPath)

	cookie := handler.CookieConfig{Name: cfg.SessionCookieName, RememberAge: cfg.RefreshTokenTTL}
	authHandler := handler.NewAuthHandler(backend, store, bus, cookie)
	sessionHandler := handler.NewSessionHandler(resolver, watcher, cfg.SessionCookieName)
	adminHandler := handler.NewAdminHandler(backend, store, capacity)

	srv := httptest.NewServer(router.New(cfg, guard, authHandler, sessionHandler, adminHandler))
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, c *http.Client, consoleURL string, email string, remember bool) {
	t.Helper()

	body := map[string]any{"email": email, "password": "password123", "remember": remember}
	resp := postJSON(t, c, consoleURL+"/api/v1/auth/login", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(string(encoded)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}
