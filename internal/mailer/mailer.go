package mailer

import (
	"github.com/phishsim/gateway/pkg/logger"
	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// Transport delivers a single rendered message. Implementations must be safe
// for sequential reuse across a whole campaign send.
type Transport interface {
	Send(to, subject, html string) error
	// Verify opens and closes a connection without sending anything, so
	// operators can validate credentials before launching a campaign.
	Verify() error
}

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPTransport sends mail over an authenticated SMTP connection.
type SMTPTransport struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPTransport(opts Options) *SMTPTransport {
	from := opts.From
	if from == "" {
		from = opts.Username
	}
	return &SMTPTransport{
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password),
		from:   from,
	}
}

func (t *SMTPTransport) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := t.dialer.DialAndSend(m); err != nil {
		return errors.Wrap(err, "smtp send failed")
	}
	return nil
}

func (t *SMTPTransport) Verify() error {
	closer, err := t.dialer.Dial()
	if err != nil {
		return errors.Wrap(err, "smtp connection failed")
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close smtp verification connection", "error", err)
	}
	return nil
}
