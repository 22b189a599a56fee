package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTier is the durable tier: a small key/value table keyed by console
// session ID. It holds remembered tokens across console restarts and nothing
// else; the backend owns all business data.
type PostgresTier struct {
	pool *pgxpool.Pool
}

func NewPostgresTier(pool *pgxpool.Pool) *PostgresTier {
	return &PostgresTier{pool: pool}
}

func (t *PostgresTier) Get(ctx context.Context, sid string, key string) (string, error) {
	var value string
	err := t.pool.QueryRow(ctx,
		`SELECT value FROM console_state
		 WHERE session_id = $1 AND key = $2 AND expires_at > now()`, sid, key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read console state: %w", err)
	}

	return value, nil
}

func (t *PostgresTier) Set(ctx context.Context, sid string, key string, value string, ttl time.Duration) error {
	_, err := t.pool.Exec(ctx,
		`INSERT INTO console_state (session_id, key, value, created_at, expires_at)
		 VALUES ($1, $2, $3, now(), $4)
		 ON CONFLICT (session_id, key)
		 DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		sid, key, value, time.Now().UTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("write console state: %w", err)
	}

	return nil
}

func (t *PostgresTier) Delete(ctx context.Context, sid string, keys ...string) error {
	_, err := t.pool.Exec(ctx,
		`DELETE FROM console_state WHERE session_id = $1 AND key = ANY($2)`, sid, keys)
	if err != nil {
		return fmt.Errorf("delete console state: %w", err)
	}

	return nil
}

// CleanExpired reclaims lapsed rows. Called from a background ticker.
func (t *PostgresTier) CleanExpired(ctx context.Context) (int64, error) {
	tag, err := t.pool.Exec(ctx, `DELETE FROM console_state WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("clean expired console state: %w", err)
	}

	return tag.RowsAffected(), nil
}
