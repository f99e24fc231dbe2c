// Package notification composes the driver welcome email, delivers it over
// SMTP, and dispatches driver-created events to the mailer.
package notification

import "context"

// Message is one composed email.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	HTML     string
	// Text is the plain-text alternative for clients that don't render HTML.
	Text string
}

// Transport delivers a composed message to a mail relay.
type Transport interface {
	// Name returns the transport identifier (e.g. "smtp").
	Name() string
	// Send opens a session, delivers msg and closes the session.
	Send(ctx context.Context, msg Message) error
}
