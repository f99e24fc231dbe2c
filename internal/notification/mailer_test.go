package notification_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftline-carrier/driver-notify/internal/notification"
)

// --- fake transport ---

type fakeTransport struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(_ context.Context, msg notification.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var validCreds = notification.Credentials{SenderEmail: "admin@swiftline.test", SenderPassword: "app-password"}

// --- tests ---

func TestSendWelcome_Success(t *testing.T) {
	tr := &fakeTransport{}
	m := notification.NewMailer(validCreds, "", tr)

	res := m.SendWelcome(context.Background(), "driver@example.com", "Alex")

	require.True(t, res.OK())
	assert.Equal(t, notification.StatusSent, res.Status)
	assert.Equal(t, "driver@example.com", res.Recipient)
	assert.Equal(t, "fake", res.Transport)
	assert.NoError(t, res.Err)

	require.Equal(t, 1, tr.calls())
	msg := tr.sent[0]
	assert.Equal(t, "Swiftline Admin", msg.FromName)
	assert.Equal(t, "driver@example.com", msg.To)
	assert.Equal(t, notification.WelcomeSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "Welcome, Alex!")
}

func TestSendWelcome_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds notification.Credentials
	}{
		{"no email", notification.Credentials{SenderPassword: "app-password"}},
		{"no password", notification.Credentials{SenderEmail: "admin@swiftline.test"}},
		{"neither", notification.Credentials{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{}
			m := notification.NewMailer(tt.creds, "", tr)

			res := m.SendWelcome(context.Background(), "driver@example.com", "Alex")

			assert.Equal(t, notification.StatusSkipped, res.Status)
			assert.ErrorIs(t, res.Err, notification.ErrMissingCredentials)
			assert.Zero(t, tr.calls())
		})
	}
}

func TestSendWelcome_TransportError(t *testing.T) {
	tr := &fakeTransport{err: errors.New("535 5.7.8 Username and Password not accepted")}
	m := notification.NewMailer(validCreds, "Dispatch", tr)

	res := m.SendWelcome(context.Background(), "driver@example.com", "Alex")

	assert.False(t, res.OK())
	assert.Equal(t, notification.StatusFailed, res.Status)
	assert.EqualError(t, res.Err, "535 5.7.8 Username and Password not accepted")
	require.Equal(t, 1, tr.calls())
	assert.Equal(t, "Dispatch", tr.sent[0].FromName)
}

func TestSendWelcome_DialErrorIsFailedResult(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no such host")}
	tr := &fakeTransport{err: fmt.Errorf("sending via smtp.gmail.com:465: %w", dialErr)}
	m := notification.NewMailer(validCreds, "", tr)

	res := m.SendWelcome(context.Background(), "driver@example.com", "Alex")

	assert.Equal(t, notification.StatusFailed, res.Status)
	var opErr *net.OpError
	assert.ErrorAs(t, res.Err, &opErr)
}

func TestCredentials_Complete(t *testing.T) {
	assert.True(t, validCreds.Complete())
	assert.False(t, notification.Credentials{}.Complete())
}
