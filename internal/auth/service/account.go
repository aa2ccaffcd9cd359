package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostcodes/quizwiz/internal/auth/domain"
	"github.com/hostcodes/quizwiz/internal/auth/mail"
	"github.com/hostcodes/quizwiz/internal/auth/store"
	"github.com/hostcodes/quizwiz/pkg/cryptox"
	"github.com/hostcodes/quizwiz/pkg/idx"
	"github.com/hostcodes/quizwiz/pkg/jwtx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

// OTPTTL is how long an email-verification code stays redeemable.
const OTPTTL = 15 * time.Minute

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// AccountService owns the account lifecycle: signup, email verification,
// signin, password recovery and password change. Session and reset tokens are
// signed with distinct secrets so one can never stand in for the other.
type AccountService struct {
	store       store.Store
	mailer      mail.Mailer
	sessions    *jwtx.HS256Signer
	resets      *jwtx.HS256Signer
	frontendURL string
}

func NewAccountService(
	st store.Store,
	mailer mail.Mailer,
	sessions, resets *jwtx.HS256Signer,
	frontendURL string,
) *AccountService {
	return &AccountService{
		store:       st,
		mailer:      mailer,
		sessions:    sessions,
		resets:      resets,
		frontendURL: frontendURL,
	}
}

// Signup registers a new unverified account and emails it a verification
// code. The UNIQUE index on email is the authority on duplicates, so a
// concurrent signup for the same address still comes back as ErrUserExists.
func (s *AccountService) Signup(ctx context.Context, name, email, password string) (string, error) {
	_, err := s.store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return "", ErrUserExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	code, err := cryptox.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		OTP: &domain.OTPChallenge{
			Code:      code,
			ExpiresAt: time.Now().Add(OTPTTL).UTC(),
		},
	}

	if err := s.store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	// The account exists either way; a lost email is recoverable, a lost
	// account is not.
	subject, html := mail.OTPMessage(name, code)
	if err := s.mailer.Send(ctx, email, subject, html); err != nil {
		slogx.FromContext(ctx).Error("failed to send verification email",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return user.ID, nil
}

// VerifyOTP redeems an email-verification code and signs the user straight
// in. The challenge is single use: a successful match flips email_verified
// and clears the code in one statement.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) (string, domain.User, error) {
	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrUserNotFound
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.OTP.Active(time.Now()) {
		return "", domain.User{}, ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(user.OTP.Code), []byte(code)) != 1 {
		return "", domain.User{}, ErrInvalidOTP
	}

	if err := s.store.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		return "", domain.User{}, fmt.Errorf("mark verified: %w", err)
	}
	user.EmailVerified = true
	user.OTP = nil

	token, err := s.sessions.Sign(user.ID, jwtx.DefaultSessionTTL)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("sign session token: %w", err)
	}

	return token, user, nil
}

// SignIn authenticates an email and password and issues a session token.
// Unknown emails and wrong passwords both come back as ErrInvalidCredentials
// so the response never reveals which half was wrong. rememberMe stretches
// the session from one hour to seven days.
func (s *AccountService) SignIn(ctx context.Context, email, password string, rememberMe bool) (string, domain.User, error) {
	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return "", domain.User{}, ErrEmailNotVerified
	}

	ttl := jwtx.DefaultSessionTTL
	if rememberMe {
		ttl = jwtx.RememberMeSessionTTL
	}

	token, err := s.sessions.Sign(user.ID, ttl)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("sign session token: %w", err)
	}

	return token, user, nil
}

// ForgotPassword issues a short-lived reset token and emails a link carrying
// it. Only the token's fingerprint is stored, so a database leak does not
// hand out live reset tokens. A fresh request replaces any prior grant.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.resets.Sign(user.ID, jwtx.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}

	rc := domain.ResetChallenge{
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: time.Now().Add(jwtx.ResetTokenTTL).UTC(),
	}
	if err := s.store.Users().SetResetChallenge(ctx, user.ID, rc); err != nil {
		return fmt.Errorf("store reset challenge: %w", err)
	}

	subject, html, err := mail.ResetMessage(s.frontendURL, token)
	if err != nil {
		return fmt.Errorf("build reset email: %w", err)
	}
	if err := s.mailer.Send(ctx, email, subject, html); err != nil {
		slogx.FromContext(ctx).Error("failed to send reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password. The token
// must verify against the reset secret AND match the stored fingerprint, so
// issuing a newer token retires every older one.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.resets.Verify(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !user.Reset.Active(time.Now()) {
		return ErrInvalidResetToken
	}
	fp := cryptox.FingerprintToken(token)
	if subtle.ConstantTimeCompare([]byte(user.Reset.TokenHash), []byte(fp)) != 1 {
		return ErrInvalidResetToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Consume the grant with the password change so the token is single use.
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.Users().ClearResetChallenge(ctx, user.ID); err != nil {
			return fmt.Errorf("clear reset challenge: %w", err)
		}
		return nil
	})
}

// ChangePassword replaces a signed-in user's password after re-checking the
// current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		return ErrWrongPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// GetUserByID returns the account behind a session token's subject.
func (s *AccountService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
