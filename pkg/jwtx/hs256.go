package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: malformed token, bad
// signature, wrong issuer, or expiry. Callers never learn which one occurred,
// so responses cannot leak whether a token was tampered with or merely stale.
var ErrInvalidToken = errors.New("jwtx: invalid or expired token")

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256Signer issues and verifies HS256 tokens under a single shared secret.
// Session and reset tokens each get their own signer so the two trust domains
// stay separate: a leaked reset secret cannot forge sessions, and vice versa.
type HS256Signer struct {
	secret []byte
	issuer string
}

// NewHS256 returns a signer/verifier bound to the given secret and issuer.
func NewHS256(secret []byte, issuer string) *HS256Signer {
	return &HS256Signer{secret: secret, issuer: issuer}
}

// Sign issues a token for subject that expires after ttl.
func (s *HS256Signer) Sign(subject string, ttl time.Duration) (string, error) {
	claims := NewClaims(subject, s.issuer, ttl, time.Now().UTC())
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Every failure
// mode collapses to ErrInvalidToken.
func (s *HS256Signer) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
