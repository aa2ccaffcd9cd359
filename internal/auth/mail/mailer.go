// Package mail delivers the transactional email the auth flows depend on:
// verification codes at signup and reset links at forgot-password.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Mailer sends a single HTML email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// OTPMessage builds the subject and body for an email-verification code.
func OTPMessage(name, code string) (subject, html string) {
	subject = "Verify your email"
	html = fmt.Sprintf(
		`<p>Hi %s,</p><p>Your verification code is <b>%s</b>.</p><p>It expires in 15 minutes.</p>`,
		name, code,
	)
	return subject, html
}

// ResetMessage builds the subject and body for a password-reset link. The
// frontend reads the token back off the query string.
func ResetMessage(frontendURL, token string) (subject, html string, err error) {
	u, err := url.Parse(frontendURL)
	if err != nil {
		return "", "", fmt.Errorf("parse frontend url: %w", err)
	}
	u.Path = "/reset-password"

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	subject = "Reset your password"
	html = fmt.Sprintf(
		`<p>Click <a href="%s">here</a> to reset your password.</p><p>The link expires in 15 minutes.</p>`,
		u.String(),
	)
	return subject, html, nil
}

// LogMailer writes the message to the log instead of sending it. Used in dev
// when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, html string) error {
	slog.InfoContext(ctx, "email suppressed, no smtp relay configured",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", html),
	)
	return nil
}
