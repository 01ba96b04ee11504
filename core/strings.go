// Package core holds the leaf helpers shared by every other package: text
// manipulation, random sequences, date handling, redirect uri builders, enum
// codecs, static JSON loading and the auditable bun entity.
package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-errors"
)

// Initials returns the upper case first letter of every value.
// At least two values are required and none may contain blank characters.
func Initials(values ...string) (string, error) {
	if len(values) < 2 {
		return "", ErrNotEnoughValues
	}

	var b strings.Builder
	for i, value := range values {
		if value == "" || strings.ContainsFunc(value, unicode.IsSpace) {
			return "", ErrInvalidValue.Clone().WithMetadata(map[string]any{
				"index": i,
			})
		}
		r, _ := utf8.DecodeRuneInString(value)
		b.WriteRune(r)
	}

	return strings.ToUpper(b.String()), nil
}

// InitialsAsRunes returns the initials of a name and surname pair.
func InitialsAsRunes(name, surname string) ([]rune, error) {
	initials, err := Initials(name, surname)
	if err != nil {
		return nil, err
	}
	return []rune(initials), nil
}

// AddDot appends a trailing dot unless the value already ends with one.
func AddDot(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, ".") {
		return value
	}
	return value + "."
}

// MaskValue hides the part of value that comes before delimiter, leaving
// visible leading characters untouched. Parts shorter than five characters
// only keep one visible character.
func MaskValue(value string, mask, delimiter rune, visible int) (string, error) {
	idx := strings.IndexRune(value, delimiter)
	if idx < 0 {
		return "", ErrMissingDelimiter.Clone().WithMetadata(map[string]any{
			"delimiter": string(delimiter),
		})
	}

	head := []rune(value[:idx])
	tail := value[idx+utf8.RuneLen(delimiter):]

	if len(head) < 5 {
		visible = 1
	}
	if visible > len(head) {
		visible = len(head)
	}
	if visible < 0 {
		visible = 0
	}

	var b strings.Builder
	b.WriteString(string(head[:visible]))
	b.WriteString(strings.Repeat(string(mask), len(head)-visible))
	b.WriteRune(delimiter)
	b.WriteString(tail)

	return b.String(), nil
}

// MaskEmail masks the local part of an email address keeping three
// characters visible.
func MaskEmail(value string) (string, error) {
	masked, err := MaskValue(value, '*', '@', 3)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "invalid email address")
	}
	return masked, nil
}
