// Package mailing sends transactional email off the request path.
package mailing

import (
	"context"
	"fmt"

	"waveline/internal/middleware"
	"waveline/internal/observability"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message. Implementations decide the transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes outbound mail to the structured log. It stands in for a
// real transport in development and tests.
type LogMailer struct {
	From string
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	observability.GlobalLogger.Info("outbound email",
		"from", m.From,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// Sender wraps a Mailer with async dispatch and canned templates. Every Send*
// method returns immediately; delivery failures are logged, never surfaced.
type Sender struct {
	mailer      Mailer
	frontendURL string
}

func NewSender(mailer Mailer, frontendURL string) *Sender {
	return &Sender{mailer: mailer, frontendURL: frontendURL}
}

func (s *Sender) dispatch(kind string, msg Message) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx := context.Background()
		observability.LogAsyncOperationStart(ctx, "send_email", map[string]interface{}{"kind": kind})
		if err := s.mailer.Send(ctx, msg); err != nil {
			middleware.MailDeliveries.WithLabelValues("failed").Inc()
			observability.LogAsyncOperationError(ctx, "send_email", err, map[string]interface{}{"kind": kind})
			return
		}
		middleware.MailDeliveries.WithLabelValues("delivered").Inc()
		observability.LogAsyncOperationEnd(ctx, "send_email", map[string]interface{}{"kind": kind})
	}()
}

// SendVerification emails the address confirmation link.
func (s *Sender) SendVerification(to, token string) {
	s.dispatch("verification", Message{
		To:      to,
		Subject: "Verify your email address",
		Body: fmt.Sprintf("Welcome! Confirm your email address by visiting:\n\n%s/verify-email?token=%s\n",
			s.frontendURL, token),
	})
}

// SendVerified confirms a completed verification.
func (s *Sender) SendVerified(to string) {
	s.dispatch("verified", Message{
		To:      to,
		Subject: "Your email address is verified",
		Body:    "Your email address has been verified. You can now log in.\n",
	})
}

// SendPasswordReset emails the reset link.
func (s *Sender) SendPasswordReset(to, token string) {
	s.dispatch("password_reset", Message{
		To:      to,
		Subject: "Reset your password",
		Body: fmt.Sprintf("A password reset was requested for this address. Reset it at:\n\n%s/reset-password?token=%s\n\nIgnore this email if you did not request it.\n",
			s.frontendURL, token),
	})
}

// SendPasswordChanged confirms a completed password reset.
func (s *Sender) SendPasswordChanged(to string) {
	s.dispatch("password_changed", Message{
		To:      to,
		Subject: "Your password was changed",
		Body:    "Your password has been changed. All sessions were signed out.\n",
	})
}
