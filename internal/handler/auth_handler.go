package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"djajbladi-console/internal/client"
	"djajbladi-console/internal/event"
	"djajbladi-console/internal/model"
	"djajbladi-console/internal/tokenstore"
	"djajbladi-console/pkg/apierror"
)

// CookieConfig describes the console session cookie. The cookie carries only
// an opaque session ID; the tokens themselves never reach the browser.
type CookieConfig struct {
	Name        string
	Secure      bool
	RememberAge time.Duration
}

type AuthHandler struct {
	backend *client.Client
	store   *tokenstore.Store
	bus     event.Bus
	cookie  CookieConfig
}

func NewAuthHandler(backend *client.Client, store *tokenstore.Store, bus event.Bus, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{backend: backend, store: store, bus: bus, cookie: cookie}
}

// loginResponse is what the console reveals after login. Deliberately no
// tokens: the browser gets a session cookie, nothing bearer-shaped.
type loginResponse struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := validateLogin(payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.backend.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	// A fresh session ID on every login; an old cookie never maps onto the
	// new tokens.
	sid := uuid.NewString()
	if err := h.store.Store(r.Context(), sid, resp.Token, resp.RefreshToken, payload.Remember); err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, sid, payload.Remember)
	h.publish(event.TypeSessionLogin, sid, resp.Email, resp.Role)

	writeJSON(w, http.StatusOK, loginResponse{Type: resp.Type, Email: resp.Email, Role: resp.Role})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := validateRegister(payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.backend.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(r)
	if sid != "" {
		if err := h.store.Clear(r.Context(), sid); err != nil {
			writeError(w, err)
			return
		}
		h.publish(event.TypeSessionLogout, sid, "", "")
	}

	h.dropSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Refresh exchanges the stored refresh token for a new pair. The request
// body may carry an explicit refreshToken (backend contract shape); when it
// does not, the stored one is used. The remember choice made at login is
// preserved for the replacement tokens.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	sid := h.sessionID(r)
	if sid == "" {
		writeError(w, model.ErrNoSession)
		return
	}

	var payload model.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&payload)

	refreshToken := strings.TrimSpace(payload.RefreshToken)
	if refreshToken == "" {
		stored, err := h.store.RefreshToken(r.Context(), sid)
		if err != nil {
			writeError(w, err)
			return
		}
		refreshToken = stored
	}
	if refreshToken == "" {
		writeError(w, model.ErrNoSession)
		return
	}

	remembered, err := h.store.Remembered(r.Context(), sid)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.backend.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Store(r.Context(), sid, resp.Token, resp.RefreshToken, remembered); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Type: resp.Type, Email: resp.Email, Role: resp.Role})
}

func (h *AuthHandler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sid string, remember bool) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if remember {
		cookie.MaxAge = int(h.cookie.RememberAge.Seconds())
	}

	http.SetCookie(w, cookie)
}

func (h *AuthHandler) dropSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func (h *AuthHandler) publish(t event.Type, sid string, email string, role string) {
	if h.bus == nil {
		return
	}

	h.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sid,
		Email:     email,
		Role:      role,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
