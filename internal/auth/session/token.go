package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFromToken reads the exp claim without verifying the signature; the
// billing API verifies tokens on every call. The earlier of exp and fallback wins.
func ExpiryFromToken(token string, fallback time.Time) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return fallback
	}
	if claims.ExpiresAt == nil {
		return fallback
	}
	exp := claims.ExpiresAt.Time
	if !fallback.IsZero() && fallback.Before(exp) {
		return fallback
	}
	return exp
}
