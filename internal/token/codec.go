// Package token decodes backend-issued access tokens without verifying the
// signature. The backend is the only party holding the signing key; it
// re-validates the signature on every API call. Decoding here exists purely
// so the console can derive the user's identity and role from the token
// instead of trusting any separately stored value.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the string is not a parseable three-segment JWT.
	ErrMalformed = errors.New("token is malformed")
	// ErrMissingFields means the payload decoded but lacks role or email.
	ErrMissingFields = errors.New("token is missing required claims")
)

// Claims is the decoded access-token payload. IssuedAt and ExpiresAt are
// seconds since epoch, exactly as they appear on the wire.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  int64
	ExpiresAt int64
}

// Decode parses a raw token into Claims. It never touches the network and
// never validates the signature.
func Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	payload := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, payload); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims := Claims{}
	claims.Subject, _ = payload["sub"].(string)
	claims.Email, _ = payload["email"].(string)
	claims.Role, _ = payload["role"].(string)
	claims.IssuedAt = numericClaim(payload, "iat")
	claims.ExpiresAt = numericClaim(payload, "exp")

	if strings.TrimSpace(claims.Email) == "" || strings.TrimSpace(claims.Role) == "" {
		return Claims{}, fmt.Errorf("%w: role and email are required", ErrMissingFields)
	}

	return claims, nil
}

// numericClaim reads a unix-seconds claim. JSON numbers decode as float64;
// some issuers emit them as json.Number-compatible strings, which
// golang-jwt normalizes to float64 as well, so float64 is the only case
// besides an explicit int64 from tests.
func numericClaim(payload jwt.MapClaims, name string) int64 {
	switch v := payload[name].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
