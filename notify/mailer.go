package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"campscout/config"
)

// Mailer sends digest emails over SMTP.
type Mailer interface {
	Send(from, to, subject, text, html string) error
}

type smtpMailer struct {
	cfg config.SmtpConfig
}

func NewMailer(cfg config.SmtpConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(from, to, subject, text, html string) error {
	if from == "" {
		from = m.cfg.EmailAddress
	}

	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	e.HTML = []byte(html)

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.EmailAddress, m.cfg.Password, m.cfg.Server)
	return e.Send(addr, auth)
}
