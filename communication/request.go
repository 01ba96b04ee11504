// Package communication renders and delivers templated e-mail messages.
package communication

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Resource is a file embedded in or attached to a message. Name is the
// content id of inline resources and the file name of attachments.
type Resource struct {
	Name string
	Path string
}

// MailRequest describes a single message.
type MailRequest struct {
	SendTo          []string
	SendFrom        string
	Subject         string
	InlineResources []Resource
	Attachments     []Resource
	Locale          string
	BaseServletPath string
	AppName         string
	ReplyAddress    string
}

// NewMailRequest creates a request without resources.
func NewMailRequest(sendTo []string, sendFrom, subject string) *MailRequest {
	return &MailRequest{
		SendTo:          sendTo,
		SendFrom:        sendFrom,
		Subject:         subject,
		InlineResources: []Resource{},
		Attachments:     []Resource{},
	}
}

// WithInlineResources sets the inline resources. nil becomes empty.
func (r *MailRequest) WithInlineResources(resources ...Resource) *MailRequest {
	r.InlineResources = append([]Resource{}, resources...)
	return r
}

// WithAttachments sets the attachments. nil becomes empty.
func (r *MailRequest) WithAttachments(resources ...Resource) *MailRequest {
	r.Attachments = append([]Resource{}, resources...)
	return r
}

// WithLocale sets the locale used by the i18n template function.
func (r *MailRequest) WithLocale(locale string) *MailRequest {
	r.Locale = locale
	return r
}

// WithApp sets the application name, base path and reply address exposed to
// templates and used for the reply-to header.
func (r *MailRequest) WithApp(appName, baseServletPath, replyAddress string) *MailRequest {
	r.AppName = appName
	r.BaseServletPath = baseServletPath
	r.ReplyAddress = replyAddress
	return r
}

// Recipients returns the recipients joined by ", ".
func (r *MailRequest) Recipients() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.SendTo, ", ")
}

// Validate checks recipients and sender.
func (r *MailRequest) Validate() error {
	if r == nil {
		return ErrIncorrectMailParameters
	}
	if r.InlineResources == nil {
		r.InlineResources = []Resource{}
	}
	if r.Attachments == nil {
		r.Attachments = []Resource{}
	}

	err := validation.ValidateStruct(r,
		validation.Field(&r.SendTo, validation.Required, validation.Each(validation.Required, is.Email)),
		validation.Field(&r.SendFrom, validation.Required, validation.By(notBlank)),
		validation.Field(&r.ReplyAddress, is.Email),
	)
	if err != nil {
		clone := ErrIncorrectMailParameters.Clone()
		clone.Source = err
		return clone.WithMetadata(map[string]any{"emailAddress": r.Recipients()})
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank", errors.CategoryValidation)
	}
	return nil
}
