// Package session derives "who is logged in" from the stored access token.
// State is recomputed on every question rather than cached: the token in the
// store is the single source of truth, and the role never comes from
// anywhere else.
package session

import (
	"context"
	"fmt"
	"time"

	"djajbladi-console/internal/model"
	"djajbladi-console/internal/token"
	"djajbladi-console/internal/tokenstore"
)

// ExpiryLeeway absorbs clock skew between console and backend: a token is
// treated as expired this long before its literal exp.
const ExpiryLeeway = 30 * time.Second

type Resolver struct {
	store *tokenstore.Store
	now   func() time.Time
}

func NewResolver(store *tokenstore.Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// WithClock overrides the wall clock, for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// IsExpired reports whether a raw token is past (or within ExpiryLeeway of)
// its expiry. Undecodable tokens count as expired.
func (r *Resolver) IsExpired(raw string) bool {
	claims, err := token.Decode(raw)
	if err != nil {
		return true
	}

	return r.now().UnixMilli() >= claims.ExpiresAt*1000-ExpiryLeeway.Milliseconds()
}

// IsAuthenticated reports whether the session holds a decodable, unexpired
// access token. It never mutates the store; callers decide when to clear.
func (r *Resolver) IsAuthenticated(ctx context.Context, sid string) bool {
	raw, err := r.store.AccessToken(ctx, sid)
	if err != nil || raw == "" {
		return false
	}

	return !r.IsExpired(raw)
}

// CurrentUser returns the JWT-derived identity, or nil when there is no
// token or it does not decode. IsExpired is computed fresh so callers can
// distinguish "logged out" from "logged in but lapsed".
func (r *Resolver) CurrentUser(ctx context.Context, sid string) (*model.SessionUser, error) {
	raw, err := r.store.AccessToken(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	claims, err := token.Decode(raw)
	if err != nil {
		return nil, nil
	}

	return &model.SessionUser{
		Email:     claims.Email,
		Role:      claims.Role,
		IsExpired: r.IsExpired(raw),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}

// Role returns the current role, or the empty string when unauthenticated or
// expired.
func (r *Resolver) Role(ctx context.Context, sid string) string {
	user, err := r.CurrentUser(ctx, sid)
	if err != nil || user == nil || user.IsExpired {
		return ""
	}

	return user.Role
}

func (r *Resolver) HasRole(ctx context.Context, sid string, role string) bool {
	return r.Role(ctx, sid) == role
}

func (r *Resolver) HasAnyRole(ctx context.Context, sid string, roles ...string) bool {
	current := r.Role(ctx, sid)
	if current == "" {
		return false
	}

	for _, role := range roles {
		if current == role {
			return true
		}
	}

	return false
}

// TimeUntilExpiry returns how long until the access token expires, floored
// at zero. The second return is false when there is no decodable token.
func (r *Resolver) TimeUntilExpiry(ctx context.Context, sid string) (time.Duration, bool) {
	raw, err := r.store.AccessToken(ctx, sid)
	if err != nil || raw == "" {
		return 0, false
	}

	claims, err := token.Decode(raw)
	if err != nil {
		return 0, false
	}

	remaining := time.Duration(claims.ExpiresAt*1000-r.now().UnixMilli()) * time.Millisecond
	if remaining < 0 {
		remaining = 0
	}

	return remaining, true
}
