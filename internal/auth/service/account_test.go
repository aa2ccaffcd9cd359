package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hostcodes/quizwiz/internal/auth/domain"
	"github.com/hostcodes/quizwiz/internal/auth/store"
	"github.com/hostcodes/quizwiz/internal/auth/store/drivers/sqlite"
	"github.com/hostcodes/quizwiz/pkg/cryptox"
	"github.com/hostcodes/quizwiz/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

// captureMailer records every message instead of sending it.
type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

type capturedMail struct {
	To      string
	Subject string
	HTML    string
}

func (m *captureMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *captureMailer) last(t *testing.T) capturedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected at least one email")
	return m.sent[len(m.sent)-1]
}

func newTestService(t *testing.T) (*AccountService, store.Store, *captureMailer) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mailer := &captureMailer{}
	sessions := jwtx.NewHS256([]byte("session-secret"), "quizwiz-auth")
	resets := jwtx.NewHS256([]byte("reset-secret"), "quizwiz-auth")

	svc := NewAccountService(st, mailer, sessions, resets, "http://localhost:5173")
	return svc, st, mailer
}

// signupVerified registers a user and walks it through OTP verification.
func signupVerified(t *testing.T, svc *AccountService, st store.Store, email, password string) string {
	t.Helper()
	ctx := context.Background()

	id, err := svc.Signup(ctx, "Test User", email, password)
	require.NoError(t, err)

	user, err := st.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, user.OTP)
	_, _, err = svc.VerifyOTP(ctx, email, user.OTP.Code)
	require.NoError(t, err)

	return id
}

func TestSignup(t *testing.T) {
	svc, st, mailer := newTestService(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	user, err := st.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	require.False(t, user.EmailVerified)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("s3cret-pass", user.PasswordHash))
	require.NotNil(t, user.OTP)
	require.Len(t, user.OTP.Code, 6)

	msg := mailer.last(t)
	require.Equal(t, "ada@example.com", msg.To)
	require.Contains(t, msg.HTML, user.OTP.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Eve", "ada@example.com", "other-pass")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestVerifyOTP(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.VerifyOTP(ctx, "ghost@example.com", "123456")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong code", func(t *testing.T) {
		user, err := st.Users().GetUserByID(ctx, id)
		require.NoError(t, err)

		wrong := "000000"
		if user.OTP.Code == wrong {
			wrong = "000001"
		}
		_, _, err = svc.VerifyOTP(ctx, "ada@example.com", wrong)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("expired code", func(t *testing.T) {
		require.NoError(t, st.Users().SetOTP(ctx, id, domain.OTPChallenge{
			Code:      "222222",
			ExpiresAt: time.Now().Add(-time.Minute).UTC(),
		}))
		_, _, err := svc.VerifyOTP(ctx, "ada@example.com", "222222")
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("success signs in and is single use", func(t *testing.T) {
		require.NoError(t, st.Users().SetOTP(ctx, id, domain.OTPChallenge{
			Code:      "333333",
			ExpiresAt: time.Now().Add(OTPTTL).UTC(),
		}))
		token, user, err := svc.VerifyOTP(ctx, "ada@example.com", "333333")
		require.NoError(t, err)
		require.True(t, user.EmailVerified)
		require.Nil(t, user.OTP)

		sessions := jwtx.NewHS256([]byte("session-secret"), "quizwiz-auth")
		claims, err := sessions.Verify(token)
		require.NoError(t, err)
		require.Equal(t, id, claims.Subject)

		// Replaying the consumed code fails.
		_, _, err = svc.VerifyOTP(ctx, "ada@example.com", "333333")
		require.ErrorIs(t, err, ErrInvalidOTP)
	})
}

func TestSignIn(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	id := signupVerified(t, svc, st, "ada@example.com", "s3cret-pass")

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, "ghost@example.com", "whatever", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.SignIn(ctx, "ada@example.com", "not-the-pass", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		token, user, err := svc.SignIn(ctx, "ada@example.com", "s3cret-pass", false)
		require.NoError(t, err)
		require.Equal(t, id, user.ID)

		sessions := jwtx.NewHS256([]byte("session-secret"), "quizwiz-auth")
		claims, err := sessions.Verify(token)
		require.NoError(t, err)
		require.Equal(t, id, claims.Subject)

		ttl := time.Until(claims.ExpiresAt.Time)
		require.InDelta(t, jwtx.DefaultSessionTTL, ttl, float64(time.Minute))
	})

	t.Run("remember me stretches the session", func(t *testing.T) {
		token, _, err := svc.SignIn(ctx, "ada@example.com", "s3cret-pass", true)
		require.NoError(t, err)

		sessions := jwtx.NewHS256([]byte("session-secret"), "quizwiz-auth")
		claims, err := sessions.Verify(token)
		require.NoError(t, err)

		ttl := time.Until(claims.ExpiresAt.Time)
		require.InDelta(t, jwtx.RememberMeSessionTTL, ttl, float64(time.Minute))
	})
}

func TestSignIn_UnverifiedEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "ada@example.com", "s3cret-pass", false)
	require.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestForgotPassword(t *testing.T) {
	svc, st, mailer := newTestService(t)
	ctx := context.Background()

	id := signupVerified(t, svc, st, "ada@example.com", "s3cret-pass")

	t.Run("unknown email", func(t *testing.T) {
		require.ErrorIs(t, svc.ForgotPassword(ctx, "ghost@example.com"), ErrUserNotFound)
	})

	t.Run("issues a link and stores only the fingerprint", func(t *testing.T) {
		require.NoError(t, svc.ForgotPassword(ctx, "ada@example.com"))

		msg := mailer.last(t)
		require.Equal(t, "ada@example.com", msg.To)
		require.Contains(t, msg.HTML, "http://localhost:5173/reset-password?token=")

		user, err := st.Users().GetUserByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, user.Reset)
		require.NotContains(t, msg.HTML, user.Reset.TokenHash)
	})
}

func TestResetPassword(t *testing.T) {
	svc, st, mailer := newTestService(t)
	ctx := context.Background()

	signupVerified(t, svc, st, "ada@example.com", "s3cret-pass")
	require.NoError(t, svc.ForgotPassword(ctx, "ada@example.com"))
	token := extractResetToken(t, mailer.last(t).HTML)

	t.Run("garbage token", func(t *testing.T) {
		require.ErrorIs(t, svc.ResetPassword(ctx, "not-a-jwt", "new-pass-123"), ErrInvalidResetToken)
	})

	t.Run("session token is not a reset token", func(t *testing.T) {
		session, _, err := svc.SignIn(ctx, "ada@example.com", "s3cret-pass", false)
		require.NoError(t, err)
		require.ErrorIs(t, svc.ResetPassword(ctx, session, "new-pass-123"), ErrInvalidResetToken)
	})

	t.Run("superseded token is rejected", func(t *testing.T) {
		require.NoError(t, svc.ForgotPassword(ctx, "ada@example.com"))
		fresh := extractResetToken(t, mailer.last(t).HTML)
		require.NotEqual(t, token, fresh)

		require.ErrorIs(t, svc.ResetPassword(ctx, token, "new-pass-123"), ErrInvalidResetToken)
		token = fresh
	})

	t.Run("success consumes the token", func(t *testing.T) {
		require.NoError(t, svc.ResetPassword(ctx, token, "brand-new-pass"))

		_, _, err := svc.SignIn(ctx, "ada@example.com", "brand-new-pass", false)
		require.NoError(t, err)
		_, _, err = svc.SignIn(ctx, "ada@example.com", "s3cret-pass", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		// Second redemption fails.
		require.ErrorIs(t, svc.ResetPassword(ctx, token, "another-pass"), ErrInvalidResetToken)
	})
}

func TestChangePassword(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	id := signupVerified(t, svc, st, "ada@example.com", "s3cret-pass")

	t.Run("unknown user", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "01K00000000000000000000000", "s3cret-pass", "new-pass")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, id, "not-the-pass", "new-pass")
		require.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, id, "s3cret-pass", "new-pass-456"))

		_, _, err := svc.SignIn(ctx, "ada@example.com", "new-pass-456", false)
		require.NoError(t, err)
		_, _, err = svc.SignIn(ctx, "ada@example.com", "s3cret-pass", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetUserByID(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	id := signupVerified(t, svc, st, "ada@example.com", "s3cret-pass")

	user, err := svc.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)

	_, err = svc.GetUserByID(ctx, "01K00000000000000000000000")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestHousekeeping_Sweep(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, st.Users().SetOTP(ctx, id, domain.OTPChallenge{
		Code:      "999999",
		ExpiresAt: time.Now().Add(-time.Hour).UTC(),
	}))

	hk := NewHousekeepingService(st, time.Hour)
	hk.Start()
	hk.Stop()

	user, err := st.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, user.OTP, "expired challenge should be swept on start")
}

// extractResetToken pulls the token query parameter out of the reset email.
func extractResetToken(t *testing.T, html string) string {
	t.Helper()

	const marker = "token="
	_, rest, found := strings.Cut(html, marker)
	require.True(t, found, "reset email must carry a token link")

	token, _, found := strings.Cut(rest, `"`)
	require.True(t, found, "token link must be quoted")
	return token
}
