package cmd

import (
	"github.com/swiftline-carrier/driver-notify/internal/config"
	"github.com/swiftline-carrier/driver-notify/internal/notification"
)

// newMailer builds the mail capability from configuration. Credentials are
// captured once here and never re-read from the environment.
func newMailer(cfg *config.AppConfig) (*notification.Mailer, *notification.SMTPTransport) {
	creds := notification.Credentials{
		SenderEmail:    cfg.SenderEmail,
		SenderPassword: cfg.SenderPassword,
	}
	transport := notification.NewSMTPTransport(notification.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Encryption: cfg.SMTPEncryption,
		Timeout:    cfg.SMTPTimeout,
	}, creds)
	return notification.NewMailer(creds, cfg.SenderName, transport), transport
}
