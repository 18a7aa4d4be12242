package storage

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minTTL = time.Second

// TokenTTL bounds max by the access token's exp claim so a stored session
// never outlives its credential. The token is parsed without verification;
// the API remains the only judge of its validity. Non-JWT tokens get max.
func TokenTTL(accessToken string, max time.Duration, now time.Time) time.Duration {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil || claims.ExpiresAt == nil {
		return max
	}

	remaining := claims.ExpiresAt.Sub(now)
	switch {
	case remaining < minTTL:
		return minTTL
	case max > 0 && remaining > max:
		return max
	default:
		return remaining
	}
}
