package communication

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/wneessen/go-mail"
)

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg *mail.Msg) error

func (f SenderFunc) Send(ctx context.Context, msg *mail.Msg) error {
	return f(ctx, msg)
}

// SMTPSender delivers messages through an SMTP server.
type SMTPSender struct {
	client *mail.Client
}

// NewSMTPSender creates a sender from the smtp settings. Authentication is
// enabled when a username is set.
func NewSMTPSender(cfg config.SMTP) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to create smtp client").
			WithMetadata(map[string]any{"host": cfg.Host, "port": cfg.Port})
	}
	return &SMTPSender{client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msg)
}
