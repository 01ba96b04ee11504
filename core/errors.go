package core

import "github.com/goliatone/go-errors"

const (
	TextCodeNotEnoughValues    = "core_not_enough_values"
	TextCodeInvalidValue       = "core_invalid_value"
	TextCodeMissingDelimiter   = "core_missing_delimiter"
	TextCodeInvalidAmount      = "core_invalid_amount"
	TextCodeInvalidDate        = "core_invalid_date"
	TextCodeInvalidURI         = "core_invalid_uri"
	TextCodeUnknownEnumValue   = "core_unknown_enum_value"
	TextCodeNotJSONFile        = "core_not_json_file"
	TextCodeStaticFileNotFound = "core_static_file_not_found"
)

// ErrNotEnoughValues is returned when a helper needs more arguments.
var ErrNotEnoughValues = errors.New("at least two values are required", errors.CategoryBadInput).
	WithTextCode(TextCodeNotEnoughValues).
	WithCode(errors.CodeBadRequest)

// ErrInvalidValue is returned for empty values or values with blank characters.
var ErrInvalidValue = errors.New("value must not be empty or contain blank characters", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidValue).
	WithCode(errors.CodeBadRequest)

// ErrMissingDelimiter is returned by MaskValue when the delimiter is absent.
var ErrMissingDelimiter = errors.New("value does not contain delimiter", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingDelimiter).
	WithCode(errors.CodeBadRequest)

// ErrInvalidAmount is returned by time helpers for amounts lower than one.
var ErrInvalidAmount = errors.New("amount must be greater than 0", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidAmount).
	WithCode(errors.CodeBadRequest)

// ErrInvalidDate is returned when a date does not follow the dd/MM/yyyy layout.
var ErrInvalidDate = errors.New("unable to parse date", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidDate).
	WithCode(errors.CodeBadRequest)

// ErrInvalidURI is returned when a redirect uri is empty or malformed.
var ErrInvalidURI = errors.New("invalid redirect uri", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidURI).
	WithCode(errors.CodeBadRequest)

// ErrUnknownEnumValue is returned when an enum codec cannot map a value.
var ErrUnknownEnumValue = errors.New("unknown enum value", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownEnumValue).
	WithCode(errors.CodeBadRequest)

// ErrNotJSONFile is returned by StaticJSONLoader for non json file names.
var ErrNotJSONFile = errors.New("file name is not a json file", errors.CategoryBadInput).
	WithTextCode(TextCodeNotJSONFile).
	WithCode(errors.CodeBadRequest)

// ErrStaticFileNotFound is returned when a static data file is missing or corrupted.
var ErrStaticFileNotFound = errors.New("static data file not found or corrupted", errors.CategoryNotFound).
	WithTextCode(TextCodeStaticFileNotFound).
	WithCode(errors.CodeNotFound)
