package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends a single HTML email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers mail through gomail.
type SMTPMailer struct {
	config EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(config EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// Send sends an email using SMTP
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// LogMailer only logs; used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	LogInfo("Email to %s skipped (SMTP not configured): %s", to, subject)
	return nil
}
