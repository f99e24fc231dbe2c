package notification

import (
	"strconv"
	"time"
)

// Relay defaults: implicit TLS to Gmail.
const (
	DefaultSMTPHost    = "smtp.gmail.com"
	DefaultSMTPPort    = 465
	DefaultSMTPTimeout = 15 * time.Second
)

// Encryption modes understood by SMTPTransport.
const (
	EncryptionSSLTLS   = "ssl_tls"
	EncryptionSTARTTLS = "starttls"
	EncryptionNone     = "none"
)

// SMTPConfig holds connection parameters for the SMTP transport.
type SMTPConfig struct {
	Host       string        `json:"host"`
	Port       int           `json:"port"`
	Encryption string        `json:"encryption"` // "ssl_tls", "starttls", "none"
	Timeout    time.Duration `json:"timeout"`
}

// DefaultSMTPConfig returns the relay settings used when nothing is configured.
func DefaultSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:       DefaultSMTPHost,
		Port:       DefaultSMTPPort,
		Encryption: EncryptionSSLTLS,
		Timeout:    DefaultSMTPTimeout,
	}
}

// Addr returns host:port.
func (c SMTPConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Credentials authenticate against the relay. They are also the sender address.
type Credentials struct {
	SenderEmail    string
	SenderPassword string
}

// Complete reports whether both the address and the password are set.
func (c Credentials) Complete() bool {
	return c.SenderEmail != "" && c.SenderPassword != ""
}
