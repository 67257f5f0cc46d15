package notify

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/wneessen/go-mail"
)

// SMTPConfig configures the SMTP relay transport (Brevo or compatible).
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPTransport delivers messages through an SMTP relay.
type SMTPTransport struct {
	client *mail.Client
	from   string
}

var _ Transport = (*SMTPTransport)(nil)

// NewSMTPTransport creates an SMTP transport. The timeout bounds the whole
// dial-and-send round trip; a timeout counts as a send failure.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(timeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "smtp client")
	}

	return &SMTPTransport{client: client, from: cfg.From}, nil
}

// Send delivers one HTML message.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(t.from); err != nil {
		return errors.Wrap(err, "from address")
	}
	if err := m.To(msg.To); err != nil {
		return errors.Wrap(err, "to address")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}
