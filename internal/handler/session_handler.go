package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"djajbladi-console/internal/session"
)

type SessionHandler struct {
	resolver   *session.Resolver
	watcher    *session.Watcher
	cookieName string
}

func NewSessionHandler(resolver *session.Resolver, watcher *session.Watcher, cookieName string) *SessionHandler {
	return &SessionHandler{resolver: resolver, watcher: watcher, cookieName: cookieName}
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
	User          any  `json:"user,omitempty"`
}

// Current reports the session state for the calling browser. Unauthenticated
// is an ordinary answer here, not an error; the login page calls this too.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(r)
	if sid == "" {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	user, err := h.resolver.CurrentUser(r.Context(), sid)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil || user.IsExpired {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: user})
}

// Watch streams session states over SSE until the session reaches a terminal
// state or the browser goes away. The console UI uses this to kick an open
// tab back to the login page the moment the token lapses.
func (h *SessionHandler) Watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	sid := h.sessionID(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for state := range h.watcher.Watch(r.Context(), sid) {
		payload, err := json.Marshal(state)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

func (h *SessionHandler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
