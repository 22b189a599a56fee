package middleware

import (
	"context"
	"net/http"
	"strings"

	"djajbladi-console/internal/model"
	"djajbladi-console/internal/session"
	"djajbladi-console/internal/tokenstore"
)

type contextKey string

const (
	sessionIDContextKey contextKey = "session_id"
	userContextKey      contextKey = "session_user"
)

// Guard gates console routes on JWT-derived session state. It is a UX
// convenience, not a security boundary: the backend re-validates the token's
// signature and role on every forwarded call regardless of what the guard
// decided.
type Guard struct {
	resolver     *session.Resolver
	store        *tokenstore.Store
	cookieName   string
	loginPath    string
	fallbackPath string
}

func NewGuard(resolver *session.Resolver, store *tokenstore.Store, cookieName string, loginPath string, fallbackPath string) *Guard {
	return &Guard{
		resolver:     resolver,
		store:        store,
		cookieName:   cookieName,
		loginPath:    loginPath,
		fallbackPath: fallbackPath,
	}
}

// Require builds the gate for a set of allowed roles. An empty set admits
// any authenticated session. Per request: no session or token sends the
// visitor to the login route; an expired token additionally clears both
// storage tiers first; a live session with the wrong role goes to the
// fallback route. JSON clients get status codes instead of redirects.
func (g *Guard) Require(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := g.sessionID(r)
			if sid == "" {
				g.denyUnauthenticated(w, r)
				return
			}

			raw, err := g.store.AccessToken(r.Context(), sid)
			if err != nil || raw == "" {
				g.denyUnauthenticated(w, r)
				return
			}

			if g.resolver.IsExpired(raw) {
				_ = g.store.Clear(r.Context(), sid)
				g.denyUnauthenticated(w, r)
				return
			}

			user, err := g.resolver.CurrentUser(r.Context(), sid)
			if err != nil || user == nil {
				g.denyUnauthenticated(w, r)
				return
			}

			if len(allowedRoles) > 0 && !g.resolver.HasAnyRole(r.Context(), sid, allowedRoles...) {
				g.denyForbidden(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDContextKey, sid)
			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin admits admins only.
func (g *Guard) RequireAdmin() func(http.Handler) http.Handler {
	return g.Require(model.RoleAdmin)
}

// RequireStaff admits farm staff (admin, veterinarian, worker).
func (g *Guard) RequireStaff() func(http.Handler) http.Handler {
	return g.Require(model.StaffRoles...)
}

// RequireVet admits veterinarians and admins.
func (g *Guard) RequireVet() func(http.Handler) http.Handler {
	return g.Require(model.VetRoles...)
}

func (g *Guard) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func (g *Guard) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeGuardError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
}

func (g *Guard) denyForbidden(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeGuardError(w, http.StatusForbidden, "insufficient permissions")
		return
	}
	http.Redirect(w, r, g.fallbackPath, http.StatusSeeOther)
}

// SessionIDFromContext returns the console session ID injected by the guard.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDContextKey).(string)
	return sid, ok
}

// UserFromContext returns the JWT-derived user injected by the guard.
func UserFromContext(ctx context.Context) (*model.SessionUser, bool) {
	user, ok := ctx.Value(userContextKey).(*model.SessionUser)
	return user, ok
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

func writeGuardError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.ErrorResponse{Error: message})
}
