package fideauth

import (
	"context"
	"fmt"
	"net/smtp"

	goerrors "github.com/goliatone/go-errors"
)

// SMTPConfig holds the mail transport options.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// SMTPNotifier delivers messages over SMTP as multipart/alternative so every
// mail carries both the HTML and the plain-text rendering.
type SMTPNotifier struct {
	cfg    SMTPConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger Logger
}

// NewSMTPNotifier returns a notifier for the given transport.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the notifier.
func (n *SMTPNotifier) WithLogger(logger Logger) *SMTPNotifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during notification dispatch")
	default:
	}

	const boundary = "fideauth-alt"

	payload := fmt.Sprintf("From: %s <%s>\r\n", n.cfg.FromName, n.cfg.From)
	payload += fmt.Sprintf("To: %s\r\n", msg.To)
	payload += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	payload += "MIME-Version: 1.0\r\n"
	payload += fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	payload += "\r\n"
	payload += fmt.Sprintf("--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.Text)
	payload += fmt.Sprintf("--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	payload += fmt.Sprintf("--%s--\r\n", boundary)

	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	if err := n.send(addr, auth, n.cfg.From, []string{msg.To}, []byte(payload)); err != nil {
		n.logger.Error("notification dispatch to %s failed: %v", msg.To, err)
		return goerrors.Wrap(err, ErrDispatchFailed.Category, ErrDispatchFailed.Message).
			WithTextCode(ErrDispatchFailed.TextCode)
	}

	n.logger.Info("notification sent to %s", msg.To)
	return nil
}

// LogNotifier writes messages to the logger instead of delivering them.
// Development mode only.
type LogNotifier struct {
	logger Logger
}

// NewLogNotifier returns a log-only notifier.
func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.Info("[DEV] email to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}
