package domain

import "time"

// OTPChallenge is an active email-verification code attached to a user.
// Code and expiry travel together: a user either has a full challenge or none
// at all, never half of one.
type OTPChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// Active reports whether the challenge can still be redeemed at now. The
// expiry must be strictly in the future; a challenge at or past its expiry is
// treated as absent even if still stored.
func (c *OTPChallenge) Active(now time.Time) bool {
	return c != nil && now.Before(c.ExpiresAt)
}

// ResetChallenge is an active password-reset grant. The token itself is a
// signed JWT held by the user; only its SHA-256 fingerprint is stored.
type ResetChallenge struct {
	TokenHash string
	ExpiresAt time.Time
}

// Active reports whether the reset grant can still be consumed at now.
func (c *ResetChallenge) Active(now time.Time) bool {
	return c != nil && now.Before(c.ExpiresAt)
}

// User is the sole persistent entity. Signin is rejected until EmailVerified
// is true; PasswordHash always holds a bcrypt hash, never plaintext.
type User struct {
	ID            string
	Name          string
	Email         string // unique across all users, stored case-sensitive
	PasswordHash  string
	EmailVerified bool
	OTP           *OTPChallenge
	Reset         *ResetChallenge
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
