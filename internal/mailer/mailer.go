// Package mailer sends account emails over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer is the outbound mail surface the rest of the app sees.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
	SendWelcome(ctx context.Context, to, username string) error
}

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject("Password reset")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"You're receiving this email because you requested a password reset for your account.\n\n"+
			"Please go to the following page and choose a new password:\n\n%s\n\n"+
			"If you didn't request this, you can safely ignore this email.\n", link))

	return m.client.DialAndSendWithContext(ctx, msg)
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, username string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject("Welcome to Finance Tracker")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your account has been created. A starter set of categories is\n"+
			"already waiting for you; log in and record your first expense.\n", username))

	return m.client.DialAndSendWithContext(ctx, msg)
}
