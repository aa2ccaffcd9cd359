package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token TTLs for the two session flavours and for password-reset grants.
const (
	// DefaultSessionTTL is the lifetime of a plain session token.
	DefaultSessionTTL = time.Hour

	// RememberMeSessionTTL is the lifetime of a persistent ("remember me")
	// session token.
	RememberMeSessionTTL = 7 * 24 * time.Hour

	// ResetTokenTTL is the fixed lifetime of a password-reset token.
	ResetTokenTTL = 15 * time.Minute
)

// Claims carried by every token this service issues. The payload is kept to
// the registered claims only; the subject is the user ID and nothing else
// about the user rides in the token.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds minimally-correct claims for a subject with the given TTL.
func NewClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. A token
// with a zeroed jti is worse than no token, so entropy failure is fatal.
func NewJTI() string {
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("jwtx: entropy unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}
