package security

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

const (
	TextCodeMissingSubject      = "MISSING_SUBJECT"
	TextCodeInvalidSecret       = "INVALID_JWT_SECRET"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodeNilUserModel        = "NIL_USER_MODEL"
	TextCodeUnknownAppMode      = "UNKNOWN_APPLICATION_MODE"
	TextCodeInvalidOtaLength    = "INVALID_OTA_LENGTH"
	TextCodeOtaPurposeMissing   = "OTA_PURPOSE_MISSING"
	TextCodeUnauthenticatedUser = i18n.KeySecurityAuthentication
	TextCodeAccessDenied        = i18n.KeySecurityAccessDenied
)

// ErrMissingSubject is returned when a token is generated without subject.
var ErrMissingSubject = errors.New("token subject must not be empty", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingSubject).
	WithCode(errors.CodeInternal)

// ErrInvalidSecret is returned for empty or non base64 signing secrets.
var ErrInvalidSecret = errors.New("jwt secret must be a non empty base64 string", errors.CategoryInternal).
	WithTextCode(TextCodeInvalidSecret).
	WithCode(errors.CodeInternal)

// ErrTokenExpired is returned for tokens past their expiration time.
var ErrTokenExpired = errors.New(ValidationExpired.Message(), errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be decoded.
var ErrTokenMalformed = errors.New(ValidationMalformed.Message(), errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid is returned for tokens with a bad signature or claims.
var ErrTokenInvalid = errors.New(ValidationInvalid.Message(), errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is returned when a password does not match
// its hash.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrNilUserModel is returned by FabricateUser for nil models.
var ErrNilUserModel = errors.New("user model must not be nil", errors.CategoryInternal).
	WithTextCode(TextCodeNilUserModel).
	WithCode(errors.CodeInternal)

// ErrUnknownApplicationMode is returned by ParseApplicationMode.
var ErrUnknownApplicationMode = errors.New("unknown application mode", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownAppMode).
	WithCode(errors.CodeInternal)

// ErrInvalidOtaLength is returned for OTA lengths lower than one.
var ErrInvalidOtaLength = errors.New("ota token length must be greater than 0", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidOtaLength).
	WithCode(errors.CodeInternal)

// ErrOtaPurposeMissing is returned when issuing an OTA token without purpose.
var ErrOtaPurposeMissing = errors.New("ota token purpose must not be empty", errors.CategoryBadInput).
	WithTextCode(TextCodeOtaPurposeMissing).
	WithCode(errors.CodeBadRequest)

// ErrOtaTokenMalformed is returned for tokens with wrong length or charset.
var ErrOtaTokenMalformed = errors.New("ota token is malformed", errors.CategoryBadInput).
	WithTextCode(i18n.KeyOtaTokenMalformed).
	WithCode(errors.CodeBadRequest)

// ErrOtaTokenNotFound is returned when no stored token matches.
var ErrOtaTokenNotFound = errors.New("ota token not found", errors.CategoryNotFound).
	WithTextCode(i18n.KeyOtaTokenNotFound).
	WithCode(errors.CodeNotFound)

// ErrOtaTokenUsed is returned when a token was already redeemed.
var ErrOtaTokenUsed = errors.New("ota token already used", errors.CategoryConflict).
	WithTextCode(i18n.KeyOtaTokenUsed).
	WithCode(errors.CodeConflict)

// ErrOtaTokenExpired is returned when a token is past expires_at.
var ErrOtaTokenExpired = errors.New("ota token expired", errors.CategoryBadInput).
	WithTextCode(i18n.KeyOtaTokenExpired).
	WithCode(errors.CodeBadRequest)

// ErrUnauthenticated is returned when a protected resource has no user.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticatedUser).
	WithCode(errors.CodeUnauthorized)

// ErrAccessDenied is returned when the user lacks a required role.
var ErrAccessDenied = errors.New("access denied", errors.CategoryAuthz).
	WithTextCode(TextCodeAccessDenied).
	WithCode(errors.CodeForbidden)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
