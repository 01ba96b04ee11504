package gfx

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

const (
	TextCodeUnsupportedImageExtension = "gfx_unsupported_image_extension"
	TextCodeImageNotReadable          = "gfx_image_not_readable"
	TextCodeInvalidHexColor           = "gfx_invalid_hex_color"
)

// ErrImageNotSupportedDimensions carries the accepted range as min and max
// metadata.
var ErrImageNotSupportedDimensions = errors.New("image dimensions are not supported", errors.CategoryBadInput).
	WithTextCode(i18n.KeyImageDimensions).
	WithCode(errors.CodeBadRequest)

// ErrFontSizeNotSupported carries the accepted range as min and max metadata.
var ErrFontSizeNotSupported = errors.New("font size is not supported", errors.CategoryBadInput).
	WithTextCode(i18n.KeyFontSizeNotSupported).
	WithCode(errors.CodeBadRequest)

// ErrTooMuchInitialsCharacters is returned unless exactly two initials are
// given.
var ErrTooMuchInitialsCharacters = errors.New("initials must consist of exactly two characters", errors.CategoryBadInput).
	WithTextCode(i18n.KeyTooMuchInitials).
	WithCode(errors.CodeBadRequest)

var ErrUnsupportedImageExtension = errors.New("image extension cannot be encoded", errors.CategoryBadInput).
	WithTextCode(TextCodeUnsupportedImageExtension).
	WithCode(errors.CodeBadRequest)

var ErrImageNotReadable = errors.New("image data cannot be decoded", errors.CategoryBadInput).
	WithTextCode(TextCodeImageNotReadable).
	WithCode(errors.CodeBadRequest)

var ErrInvalidHexColor = errors.New("invalid hex color", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidHexColor).
	WithCode(errors.CodeBadRequest)
