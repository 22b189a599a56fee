// Package tokenstore is the single place the console reads and writes the
// backend tokens it holds on behalf of a browser session. Tokens live in two
// tiers: a session tier that disappears with the console process (the
// browser-session analogue) and a durable tier written only when the user
// asked to be remembered.
package tokenstore

import (
	"context"
	"fmt"
	"time"
)

// Logical keys under which tokens are stored. The legacy role/email keys were
// written by an earlier console that persisted the role next to the token;
// they are never written or read anymore, only purged, so stale copies can
// never be mistaken for authorization state.
const (
	KeyAccessToken  = "djajbladi_token"
	KeyRefreshToken = "djajbladi_refresh_token"

	legacyKeyRole  = "djajbladi_role"
	legacyKeyEmail = "djajbladi_email"
)

// Tier is one storage backend. Get returns the empty string for absent or
// lapsed entries; errors are reserved for backend failures.
type Tier interface {
	Get(ctx context.Context, sid string, key string) (string, error)
	Set(ctx context.Context, sid string, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, sid string, keys ...string) error
}

type Store struct {
	session    Tier
	durable    Tier
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(session Tier, durable Tier, accessTTL time.Duration, refreshTTL time.Duration) *Store {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &Store{session: session, durable: durable, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Store writes both tokens to the session tier, and to the durable tier as
// well when remember is set.
func (s *Store) Store(ctx context.Context, sid string, access string, refresh string, remember bool) error {
	if err := s.session.Set(ctx, sid, KeyAccessToken, access, s.accessTTL); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := s.session.Set(ctx, sid, KeyRefreshToken, refresh, s.refreshTTL); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}

	if !remember {
		return nil
	}

	if err := s.durable.Set(ctx, sid, KeyAccessToken, access, s.accessTTL); err != nil {
		return fmt.Errorf("store durable access token: %w", err)
	}
	if err := s.durable.Set(ctx, sid, KeyRefreshToken, refresh, s.refreshTTL); err != nil {
		return fmt.Errorf("store durable refresh token: %w", err)
	}

	return nil
}

func (s *Store) AccessToken(ctx context.Context, sid string) (string, error) {
	return s.get(ctx, sid, KeyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context, sid string) (string, error) {
	return s.get(ctx, sid, KeyRefreshToken)
}

// get checks the session tier first and falls back to the durable tier, so a
// remembered login survives a console restart.
func (s *Store) get(ctx context.Context, sid string, key string) (string, error) {
	value, err := s.session.Get(ctx, sid, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if value != "" {
		return value, nil
	}

	value, err = s.durable.Get(ctx, sid, key)
	if err != nil {
		return "", fmt.Errorf("read durable %s: %w", key, err)
	}

	return value, nil
}

// Remembered reports whether this session was stored with remember set, by
// checking the durable tier directly. Used to keep the same persistence
// choice when tokens are replaced after a refresh.
func (s *Store) Remembered(ctx context.Context, sid string) (bool, error) {
	value, err := s.durable.Get(ctx, sid, KeyRefreshToken)
	if err != nil {
		return false, fmt.Errorf("read durable tier: %w", err)
	}

	return value != "", nil
}

// Clear removes both tokens from both tiers and purges the legacy role/email
// entries an older console version may have left behind.
func (s *Store) Clear(ctx context.Context, sid string) error {
	keys := []string{KeyAccessToken, KeyRefreshToken, legacyKeyRole, legacyKeyEmail}

	if err := s.session.Delete(ctx, sid, keys...); err != nil {
		return fmt.Errorf("clear session tier: %w", err)
	}
	if err := s.durable.Delete(ctx, sid, keys...); err != nil {
		return fmt.Errorf("clear durable tier: %w", err)
	}

	return nil
}
