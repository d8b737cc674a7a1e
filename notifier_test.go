package fideauth

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPNotifierSend(t *testing.T) {
	cfg := SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "mailer",
		Password: "secret",
		From:     "no-reply@example.com",
		FromName: "FastFide",
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotPayload []byte

	n := NewSMTPNotifier(cfg)
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotPayload = addr, from, to, msg
		return nil
	}

	err := n.Send(context.Background(), Message{
		To:      "merchant@example.com",
		Subject: "Confirm your email",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@example.com", gotFrom)
	assert.Equal(t, []string{"merchant@example.com"}, gotTo)

	payload := string(gotPayload)
	assert.Contains(t, payload, "From: FastFide <no-reply@example.com>")
	assert.Contains(t, payload, "Subject: Confirm your email")
	assert.Contains(t, payload, "Content-Type: multipart/alternative")
	assert.Contains(t, payload, "Content-Type: text/plain")
	assert.Contains(t, payload, "Content-Type: text/html")
	assert.Contains(t, payload, "<p>hello</p>")
	assert.True(t, strings.Contains(payload, "hello"))
}

func TestSMTPNotifierSendFailure(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587})
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := n.Send(context.Background(), Message{To: "merchant@example.com"})
	require.Error(t, err)
	assert.True(t, IsDispatchFailed(err))
}

func TestSMTPNotifierCancelledContext(t *testing.T) {
	called := false
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587})
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Send(ctx, Message{To: "merchant@example.com"})
	require.Error(t, err)
	assert.False(t, called)
}
