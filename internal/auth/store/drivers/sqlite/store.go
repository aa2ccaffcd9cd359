package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hostcodes/quizwiz/internal/auth/domain"
	"github.com/hostcodes/quizwiz/internal/auth/store"

	_ "modernc.org/sqlite"
)

// dbtx is the subset of *sql.DB / *sql.Tx the repositories need, so the same
// repo code runs inside and outside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConflict surfaces UNIQUE violations as store.ErrAlreadyExists so the
// service layer can report duplicates without racing a prior read.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

// mapUserRow assembles a domain.User from its nullable challenge columns.
// A challenge only exists when both halves of its pair are present.
func mapUserRow(
	id, name, email, passwordHash string,
	verified bool,
	otpCode sql.NullString, otpExpires sql.NullTime,
	resetHash sql.NullString, resetExpires sql.NullTime,
	createdAt, updatedAt time.Time,
) domain.User {
	u := domain.User{
		ID:            id,
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		EmailVerified: verified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}

	if otpCode.Valid && otpExpires.Valid {
		u.OTP = &domain.OTPChallenge{
			Code:      otpCode.String,
			ExpiresAt: otpExpires.Time,
		}
	}

	if resetHash.Valid && resetExpires.Valid {
		u.Reset = &domain.ResetChallenge{
			TokenHash: resetHash.String,
			ExpiresAt: resetExpires.Time,
		}
	}

	return u
}
