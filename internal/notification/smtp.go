package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPTransport delivers messages via SMTP using the go-mail library.
// Every Send dials a fresh connection and closes it before returning.
type SMTPTransport struct {
	config SMTPConfig
	creds  Credentials
}

// NewSMTPTransport creates a new SMTPTransport. Zero host/port fall back to
// the Gmail implicit TLS defaults.
func NewSMTPTransport(config SMTPConfig, creds Credentials) *SMTPTransport {
	def := DefaultSMTPConfig()
	if config.Host == "" {
		config.Host = def.Host
	}
	if config.Port == 0 {
		config.Port = def.Port
	}
	if config.Encryption == "" {
		config.Encryption = def.Encryption
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	return &SMTPTransport{config: config, creds: creds}
}

// Name returns the transport identifier.
func (t *SMTPTransport) Name() string { return "smtp" }

// Addr returns the relay address the transport dials.
func (t *SMTPTransport) Addr() string { return t.config.Addr() }

// Send delivers msg using the configured SMTP server.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	c, err := t.newClient()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	// DialAndSend closes the connection whether or not delivery succeeded.
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s via %s: %w", msg.To, t.config.Addr(), err)
	}
	return nil
}

func (t *SMTPTransport) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.creds.SenderEmail),
		mail.WithPassword(t.creds.SenderPassword),
		mail.WithTimeout(t.config.Timeout),
	}
	opts = append(opts, encryptionOptions(t.config.Encryption)...)
	return mail.NewClient(t.config.Host, opts...)
}

// encryptionOptions converts the encryption string to go-mail client options.
func encryptionOptions(enc string) []mail.Option {
	switch enc {
	case EncryptionSTARTTLS:
		return []mail.Option{mail.WithTLSPolicy(mail.TLSMandatory)}
	case EncryptionNone:
		return []mail.Option{mail.WithTLSPolicy(mail.NoTLS)}
	default:
		return []mail.Option{mail.WithSSL()}
	}
}

// buildMsg renders msg as a MIME multipart/alternative go-mail message.
func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	var err error
	if msg.FromName != "" {
		err = m.FromFormat(msg.FromName, msg.From)
	} else {
		err = m.From(msg.From)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	m.Subject(msg.Subject)
	if msg.Text != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	} else {
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
