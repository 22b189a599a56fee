package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-key"))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	now := time.Now().Unix()

	t.Run("well-formed token", func(t *testing.T) {
		raw := signedToken(t, jwt.MapClaims{
			"sub":   "a@b.com",
			"email": "a@b.com",
			"role":  "Admin",
			"iat":   now,
			"exp":   now + 3600,
		})

		claims, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", claims.Subject)
		assert.Equal(t, "a@b.com", claims.Email)
		assert.Equal(t, "Admin", claims.Role)
		assert.Equal(t, now, claims.IssuedAt)
		assert.Equal(t, now+3600, claims.ExpiresAt)
	})

	t.Run("signature is not verified", func(t *testing.T) {
		raw := signedToken(t, jwt.MapClaims{"email": "a@b.com", "role": "Client", "exp": now + 60})

		// Corrupt the signature segment; the codec must not care.
		tampered := raw[:len(raw)-4] + "AAAA"
		claims, err := Decode(tampered)
		require.NoError(t, err)
		assert.Equal(t, "Client", claims.Role)
	})

	t.Run("malformed strings", func(t *testing.T) {
		cases := map[string]string{
			"empty":             "",
			"no dots":           "not-a-token",
			"two segments":      "abc.def",
			"payload not json":  "aGVhZGVy." + base64.RawURLEncoding.EncodeToString([]byte("{broken")) + ".c2ln",
			"payload not b64":   "aGVhZGVy.!!!.c2ln",
		}

		for name, raw := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := Decode(raw)
				assert.ErrorIs(t, err, ErrMalformed)
			})
		}
	})

	t.Run("missing role or email", func(t *testing.T) {
		cases := map[string]jwt.MapClaims{
			"no role":     {"email": "a@b.com", "exp": now + 60},
			"no email":    {"role": "Admin", "exp": now + 60},
			"empty role":  {"email": "a@b.com", "role": "", "exp": now + 60},
			"blank email": {"email": "   ", "role": "Admin", "exp": now + 60},
		}

		for name, claims := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := Decode(signedToken(t, claims))
				assert.ErrorIs(t, err, ErrMissingFields)
			})
		}
	})

	t.Run("missing exp decodes to zero", func(t *testing.T) {
		claims, err := Decode(signedToken(t, jwt.MapClaims{"email": "a@b.com", "role": "Client"}))
		require.NoError(t, err)
		assert.Zero(t, claims.ExpiresAt)
	})
}
