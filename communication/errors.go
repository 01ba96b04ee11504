package communication

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

// ErrUnableToSendEmail is returned for any failure while rendering or
// delivering a message. The recipients are kept as emailAddress metadata.
var ErrUnableToSendEmail = errors.New("unable to send email message", errors.CategoryOperation).
	WithTextCode(i18n.KeyUnableToSendEmail).
	WithCode(http.StatusServiceUnavailable)

// ErrIncorrectMailParameters is returned by MailRequest.Validate.
var ErrIncorrectMailParameters = errors.New("incorrect email message parameters", errors.CategoryBadInput).
	WithTextCode(i18n.KeyIncorrectMailParameters).
	WithCode(errors.CodeBadRequest)
