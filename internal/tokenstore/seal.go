package tokenstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedTier wraps another tier and encrypts values at rest, so bearer tokens
// in the durable store are useless without the console's seal key. A value
// that fails to open (tampered row, rotated key) reads as absent rather than
// erroring, which downstream logic treats the same as "not logged in".
type SealedTier struct {
	inner Tier
	aead  cipher.AEAD
}

func NewSealedTier(inner Tier, key []byte) (*SealedTier, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("initialize seal: %w", err)
	}

	return &SealedTier{inner: inner, aead: aead}, nil
}

func (t *SealedTier) Get(ctx context.Context, sid string, key string) (string, error) {
	sealed, err := t.inner.Get(ctx, sid, key)
	if err != nil || sealed == "" {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < t.aead.NonceSize() {
		return "", nil
	}

	nonce, ciphertext := raw[:t.aead.NonceSize()], raw[t.aead.NonceSize():]
	plaintext, err := t.aead.Open(nil, nonce, ciphertext, []byte(sid+"/"+key))
	if err != nil {
		return "", nil
	}

	return string(plaintext), nil
}

func (t *SealedTier) Set(ctx context.Context, sid string, key string, value string, ttl time.Duration) error {
	nonce := make([]byte, t.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("seal nonce: %w", err)
	}

	// The session/key pair is bound as additional data so a sealed value
	// cannot be replayed under another session or logical key.
	ciphertext := t.aead.Seal(nonce, nonce, []byte(value), []byte(sid+"/"+key))
	return t.inner.Set(ctx, sid, key, base64.RawStdEncoding.EncodeToString(ciphertext), ttl)
}

func (t *SealedTier) Delete(ctx context.Context, sid string, keys ...string) error {
	return t.inner.Delete(ctx, sid, keys...)
}
