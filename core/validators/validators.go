// Package validators provides ozzo-validation rules used by request models.
package validators

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/core"
	"github.com/goliatone/go-security/i18n"
	"github.com/nyaruka/phonenumbers"
)

var (
	ErrEnumInvalid = errors.New("value is not allowed", errors.CategoryValidation).
		WithTextCode(i18n.KeyValidationEnumIsValid)

	ErrDateNotBefore = errors.New("date must be a dd/MM/yyyy date before today", errors.CategoryValidation).
		WithTextCode(i18n.KeyValidationDateIsBefore)

	ErrPasswordsNotMatch = errors.New("passwords must match", errors.CategoryValidation).
		WithTextCode(i18n.KeyValidationPasswordsMatch)

	ErrPhoneInvalid = errors.New("invalid phone number", errors.CategoryValidation).
		WithTextCode(i18n.KeyValidationPhoneNumber)

	ErrSupplierNotAllowed = errors.New("unsupported oauth2 supplier", errors.CategoryValidation).
		WithTextCode(i18n.KeyValidationOAuth2Supplier)
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// PasswordModel is implemented by forms carrying a password and its
// confirmation.
type PasswordModel interface {
	PasswordValue() string
	ConfirmedPasswordValue() string
}

// EnumIsValid accepts values that match one of values ignoring case.
// Empty values are skipped, pair it with validation.Required.
func EnumIsValid[T ~string](values ...T) validation.RuleFunc {
	allowed := make([]string, 0, len(values))
	for _, v := range values {
		allowed = append(allowed, strings.ToLower(string(v)))
	}
	return membership(allowed, ErrEnumInvalid)
}

// OAuth2Supplier accepts the name of one of the available suppliers.
func OAuth2Supplier(available ...string) validation.RuleFunc {
	allowed := make([]string, 0, len(available))
	for _, v := range available {
		allowed = append(allowed, strings.ToLower(strings.TrimSpace(v)))
	}
	return membership(allowed, ErrSupplierNotAllowed)
}

func membership(allowed []string, sentinel *errors.Error) validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := asString(value)
		if !ok || s == "" {
			return nil
		}
		needle := strings.ToLower(strings.TrimSpace(s))
		for _, a := range allowed {
			if a == needle {
				return nil
			}
		}
		return sentinel.Clone().WithMetadata(map[string]any{
			"value":   s,
			"allowed": strings.Join(allowed, ", "),
		})
	}
}

// DateIsBefore accepts dd/MM/yyyy dates that are not later than today.
func DateIsBefore() validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := asString(value)
		if !ok || s == "" {
			return nil
		}
		date, err := core.ParseDate(s)
		if err != nil {
			return ErrDateNotBefore
		}
		now := nowFunc()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if date.After(today) {
			return ErrDateNotBefore
		}
		return nil
	}
}

// PasswordsMatch checks the confirmation of model. It is meant for the
// confirmation field and ignores the value it receives.
func PasswordsMatch(model PasswordModel) validation.RuleFunc {
	return func(_ interface{}) error {
		if model == nil || model.PasswordValue() != model.ConfirmedPasswordValue() {
			return ErrPasswordsNotMatch
		}
		return nil
	}
}

// PhoneNumber accepts numbers valid for region, e.g. "PL" or "US". Numbers
// given in international format are valid regardless of region.
func PhoneNumber(region string) validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := asString(value)
		if !ok || s == "" {
			return nil
		}
		num, err := phonenumbers.Parse(s, strings.ToUpper(region))
		if err != nil || !phonenumbers.IsValidNumber(num) {
			return ErrPhoneInvalid.Clone().WithMetadata(map[string]any{"value": s})
		}
		return nil
	}
}

func asString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", true
		}
		return *v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
