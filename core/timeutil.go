package core

import (
	"time"

	"github.com/goliatone/go-errors"
)

const (
	// DateLayout is the dd/MM/yyyy layout accepted by forms.
	DateLayout = "02/01/2006"
	// DateTimeLayout is the yyyy-MM-dd HH:mm:ss layout used in responses.
	DateTimeLayout = "2006-01-02 15:04:05"

	monthDuration = 31 * 24 * time.Hour
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// AddMinutes adds minutes to t. Minutes must be greater than zero.
func AddMinutes(minutes int, t time.Time) (time.Time, error) {
	if minutes < 1 {
		return time.Time{}, ErrInvalidAmount
	}
	return t.Add(time.Duration(minutes) * time.Minute), nil
}

// AddMonths adds months of 31 days to t. Months must be greater than zero.
func AddMonths(months int, t time.Time) (time.Time, error) {
	if months < 1 {
		return time.Time{}, ErrInvalidAmount
	}
	return t.Add(time.Duration(months) * monthDuration), nil
}

// CurrYearMinusAcceptableAge returns the current year minus years.
func CurrYearMinusAcceptableAge(years int) (int, error) {
	if years < 1 {
		return 0, ErrInvalidAmount
	}
	return nowFunc().Year() - years, nil
}

// ParseDate parses a dd/MM/yyyy date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.CategoryBadInput, ErrInvalidDate.Message).
			WithTextCode(TextCodeInvalidDate).
			WithMetadata(map[string]any{"value": value})
	}
	return t, nil
}

// SerializeUTC formats t in UTC using DateTimeLayout.
func SerializeUTC(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// SerializeNowUTC formats the current instant using DateTimeLayout.
func SerializeNowUTC() string {
	return SerializeUTC(nowFunc())
}

// IsExpired reports whether t is in the past.
func IsExpired(t time.Time) bool {
	return t.Before(nowFunc())
}

// IsNonExpired reports whether t is still in the future.
func IsNonExpired(t time.Time) bool {
	return !IsExpired(t)
}
