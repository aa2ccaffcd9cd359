package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/hostcodes/quizwiz/internal/auth/domain"
	"github.com/hostcodes/quizwiz/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, email, password_hash, email_verified,
	otp_code, otp_expires_at, reset_token_hash, reset_expires_at,
	created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()

	var otpCode sql.NullString
	var otpExpires sql.NullTime
	if u.OTP != nil {
		otpCode = sql.NullString{String: u.OTP.Code, Valid: true}
		otpExpires = sql.NullTime{Time: u.OTP.ExpiresAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, email_verified,
			otp_code, otp_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.EmailVerified,
		otpCode, otpExpires, now, now,
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) SetOTP(ctx context.Context, userID string, otp domain.OTPChallenge) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_code = ?, otp_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		otp.Code, otp.ExpiresAt, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email_verified = 1, otp_code = NULL, otp_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) SetResetChallenge(ctx context.Context, userID string, rc domain.ResetChallenge) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		rc.TokenHash, rc.ExpiresAt, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) ClearResetChallenge(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET otp_code = NULL, otp_expires_at = NULL, updated_at = ?
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at <= ?`,
		now.UTC(), now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) DeleteExpiredResetChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
		WHERE reset_expires_at IS NOT NULL AND reset_expires_at <= ?`,
		now.UTC(), now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var (
		id, name, email, passwordHash string
		verified                      bool
		otpCode, resetHash            sql.NullString
		otpExpires, resetExpires      sql.NullTime
		createdAt, updatedAt          time.Time
	)

	err := row.Scan(&id, &name, &email, &passwordHash, &verified,
		&otpCode, &otpExpires, &resetHash, &resetExpires,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	return mapUserRow(id, name, email, passwordHash, verified,
		otpCode, otpExpires, resetHash, resetExpires,
		createdAt, updatedAt), nil
}

// requireRow turns a zero-row UPDATE into store.ErrNotFound.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
