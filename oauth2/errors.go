package oauth2

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

const (
	TextCodeInvalidState  = "OAUTH2_INVALID_STATE"
	TextCodeStateExpired  = "OAUTH2_STATE_EXPIRED"
	TextCodeNoAccessToken = "OAUTH2_MISSING_ACCESS_TOKEN"
)

// ErrSupplierNotImplemented is returned for supplier names that are unknown
// or not enabled. The supplier is kept in the metadata.
var ErrSupplierNotImplemented = errors.New("oauth2 supplier is not implemented", errors.CategoryNotFound).
	WithTextCode(i18n.KeyOAuth2SupplierNotImpl).
	WithCode(errors.CodeNotFound)

// ErrAuthenticationProcessing is returned when the exchange with the
// supplier or the local registration fails.
var ErrAuthenticationProcessing = errors.New("unable to process oauth2 authentication", errors.CategoryAuth).
	WithTextCode(i18n.KeyOAuth2Authentication).
	WithCode(errors.CodeUnauthorized)

// ErrURINotSupported is returned when the redirect target is not one of the
// configured redirect uris.
var ErrURINotSupported = errors.New("redirect uri is not supported", errors.CategoryBadInput).
	WithTextCode(i18n.KeyOAuth2URINotSupported).
	WithCode(errors.CodeBadRequest)

// ErrInvalidState is returned when the state is tampered or does not match
// the stored authorization request.
var ErrInvalidState = errors.New("invalid oauth2 state", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrStateExpired is returned when the stored authorization request expired.
var ErrStateExpired = errors.New("oauth2 state expired", errors.CategoryBadInput).
	WithTextCode(TextCodeStateExpired).
	WithCode(errors.CodeBadRequest)

// ErrMissingAccessToken is returned for token responses without a token.
var ErrMissingAccessToken = errors.New("token response has no access token", errors.CategoryBadInput).
	WithTextCode(TextCodeNoAccessToken).
	WithCode(errors.CodeBadRequest)

func supplierNotImplemented(name string) error {
	return ErrSupplierNotImplemented.Clone().WithMetadata(map[string]any{"supplier": name})
}

func authenticationFailed(err error, meta map[string]any) error {
	clone := ErrAuthenticationProcessing.Clone()
	if err != nil {
		clone.Source = err
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}
	return clone
}
