package file

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

// ErrNotAcceptableFileExtension is returned when an uploaded file does not
// match any accepted content type. The accepted extensions are kept as
// extensions metadata.
var ErrNotAcceptableFileExtension = errors.New("not acceptable file extension", errors.CategoryBadInput).
	WithTextCode(i18n.KeyNotAcceptableExtension).
	WithCode(errors.CodeBadRequest)

// ErrSendingFormFileNotExist is returned for missing or empty uploads.
var ErrSendingFormFileNotExist = errors.New("sent file does not exist or is empty", errors.CategoryNotFound).
	WithTextCode(i18n.KeySendingFormFileNotExist).
	WithCode(errors.CodeNotFound)

// ErrHashCodeFormat is returned when a hash code does not match the
// configured pattern.
var ErrHashCodeFormat = errors.New("hash code has an incorrect format", errors.CategoryBadInput).
	WithTextCode(i18n.KeyHashCodeFormat).
	WithCode(errors.CodeBadRequest)

// ErrExternalFileServerMalfunction is returned when the remote store fails.
var ErrExternalFileServerMalfunction = errors.New("external file server is not responding", errors.CategoryExternal).
	WithTextCode(i18n.KeyExternalFileServer).
	WithCode(http.StatusServiceUnavailable)
