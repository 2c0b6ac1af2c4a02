package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/picstream/auth-service/internal/infra/config"
)

// SMTPMailer delivers transactional mail over plain SMTP. Callers treat
// dispatch failures as non-fatal; this type only reports them.
type SMTPMailer struct {
	dialer          *gomail.Dialer
	from            string
	confirmationURL string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:          gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:            cfg.SMTPFrom,
		confirmationURL: cfg.ConfirmationURL,
	}
}

func (m *SMTPMailer) SendConfirmationEmail(_ context.Context, to, login, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirm your registration")
	msg.SetBody("text/html", confirmationBody(login, m.confirmationURL, code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

func confirmationBody(login, baseURL, code string) string {
	link := fmt.Sprintf("%s?code=%s", baseURL, code)
	return fmt.Sprintf(
		`<p>Hi %s,</p><p>finish your registration by confirming your email:</p><p><a href=%q>Confirm email</a></p><p>The link expires in one hour. Your code: %s</p>`,
		login, link, code,
	)
}
