package notification

import (
	"context"
	"errors"
	"time"
)

// ErrMissingCredentials is reported when the sender address or password is unset.
var ErrMissingCredentials = errors.New("email credentials not found in environment")

// Status is the outcome of one send attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result describes a send attempt. Err is set for failed and skipped attempts.
type Result struct {
	Status    Status
	Recipient string
	Subject   string
	Transport string
	Err       error
	Duration  time.Duration
}

// OK reports whether the message was handed to the relay.
func (r Result) OK() bool { return r.Status == StatusSent }

// WelcomeSender sends one welcome email and reports the outcome.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, recipient, name string) Result
}

// Mailer holds the sender credentials and the transport used to reach the relay.
type Mailer struct {
	creds      Credentials
	senderName string
	transport  Transport
}

// NewMailer creates a Mailer. An empty senderName uses DefaultSenderName.
func NewMailer(creds Credentials, senderName string, transport Transport) *Mailer {
	if senderName == "" {
		senderName = DefaultSenderName
	}
	return &Mailer{creds: creds, senderName: senderName, transport: transport}
}

// SendWelcome composes and sends the welcome email. Failures are reported in
// the Result; the transport is not touched when credentials are incomplete.
func (m *Mailer) SendWelcome(ctx context.Context, recipient, name string) Result {
	res := Result{
		Recipient: recipient,
		Subject:   WelcomeSubject,
		Transport: m.transport.Name(),
	}
	if !m.creds.Complete() {
		res.Status = StatusSkipped
		res.Err = ErrMissingCredentials
		return res
	}

	msg, err := ComposeWelcome(m.creds, m.senderName, recipient, name)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	start := time.Now()
	err = m.transport.Send(ctx, msg)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.Status = StatusSent
	return res
}
