package communication

import (
	"context"
	"math"

	"github.com/goliatone/go-print"
	"github.com/wneessen/go-mail"
	"golang.org/x/time/rate"
)

// MailServiceOption configures a MailService.
type MailServiceOption func(*MailService)

// WithRatePerSecond limits how many messages are sent per second. Zero or
// less disables the limit.
func WithRatePerSecond(limit float64) MailServiceOption {
	return func(s *MailService) {
		if limit <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(limit), int(math.Max(1, limit)))
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) MailServiceOption {
	return func(s *MailService) {
		if l != nil {
			s.logger = l
		}
	}
}

// MailService renders and sends templated messages.
type MailService struct {
	renderer TemplateRenderer
	sender   Sender
	limiter  *rate.Limiter
	logger   Logger
}

// NewMailService creates a service without a rate limit.
func NewMailService(renderer TemplateRenderer, sender Sender, opts ...MailServiceOption) *MailService {
	s := &MailService{
		renderer: renderer,
		sender:   sender,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   defLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendEmail validates req, renders template with model and sends the
// message. Invalid requests fail with ErrIncorrectMailParameters, every other
// failure with ErrUnableToSendEmail.
func (s *MailService) SendEmail(ctx context.Context, req *MailRequest, model map[string]any, template MailTemplate) error {
	if err := req.Validate(); err != nil {
		return err
	}

	body, err := s.renderer.Render(req, template, model)
	if err != nil {
		return s.unableToSend(req, err)
	}

	msg, err := s.compose(req, body)
	if err != nil {
		return s.unableToSend(req, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return s.unableToSend(req, err)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return s.unableToSend(req, err)
	}

	s.logger.Info("email message %q sent to %s", req.Subject, req.Recipients())
	return nil
}

func (s *MailService) compose(req *MailRequest, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.To(req.SendTo...); err != nil {
		return nil, err
	}

	if req.AppName != "" {
		if err := msg.FromFormat(req.AppName, req.SendFrom); err != nil {
			return nil, err
		}
	} else if err := msg.From(req.SendFrom); err != nil {
		return nil, err
	}

	if req.ReplyAddress != "" {
		if req.AppName != "" {
			if err := msg.ReplyToFormat(req.AppName, req.ReplyAddress); err != nil {
				return nil, err
			}
		} else if err := msg.ReplyTo(req.ReplyAddress); err != nil {
			return nil, err
		}
	}

	msg.Subject(req.Subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	for _, res := range req.InlineResources {
		msg.EmbedFile(res.Path, mail.WithFileName(res.Name))
	}
	for _, res := range req.Attachments {
		msg.AttachFile(res.Path, mail.WithFileName(res.Name))
	}
	return msg, nil
}

func (s *MailService) unableToSend(req *MailRequest, err error) error {
	s.logger.Error("unable to send email message: %v", err)
	s.logger.Debug("failed mail request: %s", print.MaybePrettyJSON(req))

	clone := ErrUnableToSendEmail.Clone()
	clone.Source = err
	return clone.WithMetadata(map[string]any{"emailAddress": req.Recipients()})
}
