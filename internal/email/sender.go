// Package email provides the SMTP delivery channel for agent notifications.
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sales_crm_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, htmlBody string) error
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSender creates the configured sender. With email disabled it returns a
// no-op sender so callers need no enabled/disabled branches.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return noopSender{}
	}

	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// Send delivers one HTML email.
func (s *SMTPSender) Send(ctx context.Context, toEmail, subject, htmlBody string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("smtp send: empty recipient")
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

type noopSender struct{}

func (noopSender) Send(ctx context.Context, toEmail, subject, htmlBody string) error {
	return nil
}
