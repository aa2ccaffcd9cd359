package store

import (
	"context"
	"errors"
	"time"

	"github.com/hostcodes/quizwiz/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken; the UNIQUE index is
	// the authority on uniqueness, not a prior read.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a user by their unique email (case-sensitive).
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// SetOTP attaches a fresh verification challenge, replacing any prior one.
	SetOTP(ctx context.Context, userID string, otp domain.OTPChallenge) error

	// MarkEmailVerified flips email_verified and clears the OTP challenge in
	// one statement (single-use semantics).
	MarkEmailVerified(ctx context.Context, userID string) error

	// SetResetChallenge persists a password-reset grant, replacing any prior one.
	SetResetChallenge(ctx context.Context, userID string, rc domain.ResetChallenge) error

	// ClearResetChallenge removes any stored reset grant.
	ClearResetChallenge(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteExpiredOTPs clears OTP challenges whose expiry is at or before now.
	DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error)

	// DeleteExpiredResetChallenges clears reset grants whose expiry is at or
	// before now.
	DeleteExpiredResetChallenges(ctx context.Context, now time.Time) (int64, error)
}
