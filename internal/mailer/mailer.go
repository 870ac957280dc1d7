// Package mailer sends transactional mail over SMTP with gomail.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/config"
)

// Message is one outgoing mail. At least one of TextBody and HTMLBody must
// be set; when both are, HTML is sent as the alternative part.
type Message struct {
	To       []string
	CC       []string
	BCC      []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

// ErrDisabled is returned by Send when MAIL_ENABLED is false.
var ErrDisabled = errors.New("email is disabled")

// InvalidMessageError reports a message that cannot be built.
type InvalidMessageError struct{ Reason string }

func (e *InvalidMessageError) Error() string { return "invalid email message: " + e.Reason }

// SendError wraps a transport failure.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("email send failed (smtp): %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Sender is the interface the notification layer depends on.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// dialer is the slice of *gomail.Dialer that Client uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Client struct {
	cfg  config.MailConfig
	dial func() dialer
}

func New(cfg config.MailConfig) *Client {
	c := &Client{cfg: cfg}
	c.dial = c.newDialer
	return c
}

// Send builds m and delivers it, giving up at the earlier of ctx's deadline
// and SMTP_TIMEOUT. The SMTP exchange itself cannot be interrupted; on
// timeout it finishes in the background and its result is dropped.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}
	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	d := c.dial()
	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(msg)
	}()

	wait := c.cfg.SMTPTimeout
	if wait <= 0 {
		wait = 15 * time.Second
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left > 0 && left < wait {
			wait = left
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return &SendError{Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func (c *Client) newDialer() dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUser, c.cfg.SMTPPass)
	d.SSL = c.cfg.SMTPSSL
	d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return d
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, &InvalidMessageError{Reason: "from is required"}
	}
	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, &InvalidMessageError{Reason: "at least one recipient is required"}
	}
	subj := strings.TrimSpace(m.Subject)
	if subj == "" {
		return nil, &InvalidMessageError{Reason: "subject is required"}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	if cc := cleanAddrs(m.CC); len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}
	if bcc := cleanAddrs(m.BCC); len(bcc) > 0 {
		msg.SetHeader("Bcc", bcc...)
	}
	if r := strings.TrimSpace(m.ReplyTo); r != "" {
		msg.SetHeader("Reply-To", r)
	}
	msg.SetHeader("Subject", subj)
	for k, v := range m.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		msg.SetHeader(k, v)
	}

	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""
	switch {
	case hasText && hasHTML:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		msg.SetBody("text/html", m.HTMLBody)
	case hasText:
		msg.SetBody("text/plain", m.TextBody)
	default:
		return nil, &InvalidMessageError{Reason: "either TextBody or HTMLBody is required"}
	}
	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
