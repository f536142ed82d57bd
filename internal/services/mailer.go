package services

import (
	"fmt"
	"net/smtp"

	"github.com/projectsoft/obras-api/internal/config"
)

// Mailer sends outbound mail over SMTP
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailer creates a mailer from the mail section of the configuration
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.MailHost,
		port:     cfg.MailPort,
		username: cfg.MailUser,
		password: cfg.MailPassword,
		from:     cfg.MailUser,
	}
}

// SendPasswordReset mails the password recovery link to a user
func (m *Mailer) SendPasswordReset(to, link string) error {
	subject := "Password Recovery"
	body := fmt.Sprintf(
		"You requested a password reset.\r\n\r\n"+
			"Please follow this link to complete the process:\r\n\r\n%s\r\n\r\n"+
			"If you did not request this, ignore this email.\r\n", link)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	authentication := smtp.PlainAuth("", m.username, m.password, m.host)

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		m.from, to, subject, body)

	if err := smtp.SendMail(addr, authentication, m.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
