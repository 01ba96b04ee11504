package communication

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Mailer sends templated messages. MailService implements it.
type Mailer interface {
	SendEmail(ctx context.Context, req *MailRequest, model map[string]any, template MailTemplate) error
}

type SendMailMessage struct {
	Request  *MailRequest
	Template MailTemplate
	Model    map[string]any
}

func (m SendMailMessage) Type() string { return "communication.mail.send" }

type SendMailHandler struct {
	mailer Mailer
	logger Logger
}

func NewSendMailHandler(mailer Mailer) *SendMailHandler {
	return &SendMailHandler{mailer: mailer, logger: defLogger{}}
}

// WithLogger overrides the logger used by the handler.
func (h *SendMailHandler) WithLogger(logger Logger) *SendMailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SendMailHandler) Execute(ctx context.Context, msg SendMailMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during mail send")
	default:
	}

	if msg.Template == "" {
		return ErrIncorrectMailParameters.Clone().WithMetadata(map[string]any{
			"emailAddress": msg.Request.Recipients(),
			"reason":       "missing template",
		})
	}

	h.logger.Debug("sending %s to %s", msg.Template, msg.Request.Recipients())
	return h.mailer.SendEmail(ctx, msg.Request, msg.Model, msg.Template)
}
