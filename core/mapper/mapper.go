// Package mapper copies values between structs by field name. Fields can be
// run through named converters before they reach the destination.
package mapper

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/core"
)

// Names of the built in converters.
const (
	DateFromStringToObject    = "date-from-string-to-object"
	CapitalizedFirstLetter    = "capitalized-first-letter"
	ChangeAllLettersToLower   = "change-all-letters-to-lower"
	InsertNullIfStringIsEmpty = "insert-null-if-string-is-empty"
	ReturnEmptyStringIfIsNull = "return-empty-string-if-is-null"
)

const (
	TextCodeUnknownConverter   = "mapper_unknown_converter"
	TextCodeConversionFailed   = "mapper_conversion_failed"
	TextCodeInvalidMapArgument = "mapper_invalid_argument"
)

// TagName is the struct tag used to rename a field during mapping.
const TagName = "mapper"

var (
	ErrUnknownConverter = errors.New("unknown converter", errors.CategoryBadInput).
		WithTextCode(TextCodeUnknownConverter).
		WithCode(errors.CodeInternal)

	ErrConversionFailed = errors.New("field conversion failed", errors.CategoryBadInput).
		WithTextCode(TextCodeConversionFailed).
		WithCode(errors.CodeBadRequest)

	ErrInvalidArgument = errors.New("mapper source must be a struct and destination a struct pointer", errors.CategoryBadInput).
		WithTextCode(TextCodeInvalidMapArgument).
		WithCode(errors.CodeInternal)
)

// Converter transforms a single source value.
type Converter func(value any) (any, error)

// Option configures a Mapper.
type Option func(*Mapper)

// WithConverters binds source field names to converter names.
func WithConverters(fields map[string]string) Option {
	return func(m *Mapper) {
		for field, name := range fields {
			m.fields[field] = name
		}
	}
}

// WithConverter registers a custom converter under name.
func WithConverter(name string, fn Converter) Option {
	return func(m *Mapper) {
		m.converters[name] = fn
	}
}

// Mapper copies struct fields onto another struct.
type Mapper struct {
	converters map[string]Converter
	fields     map[string]string
}

// New creates a Mapper. Field bindings referencing an unregistered
// converter are rejected.
func New(opts ...Option) (*Mapper, error) {
	m := &Mapper{
		converters: defaultConverters(),
		fields:     map[string]string{},
	}

	for _, opt := range opts {
		opt(m)
	}

	for field, name := range m.fields {
		if _, ok := m.converters[name]; !ok {
			return nil, ErrUnknownConverter.Clone().WithMetadata(map[string]any{
				"field":     field,
				"converter": name,
			})
		}
	}

	return m, nil
}

// Map copies src onto dst. dst must be a pointer to a struct.
func (m *Mapper) Map(src, dst any) error {
	values, err := m.flatten(src)
	if err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDateHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return ErrInvalidArgument.Clone().WithMetadata(map[string]any{"error": err.Error()})
	}

	if err := decoder.Decode(values); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, ErrConversionFailed.Message).
		WithTextCode(TextCodeConversionFailed)
	}
	return nil
}

// stringToDateHook parses strings into time.Time using core.DateLayout. A
// blank string maps to the zero time.
func stringToDateHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(core.DateLayout, s)
}

// MapTo is the generic form of Map.
func MapTo[T any](m *Mapper, src any) (*T, error) {
	out := new(T)
	if err := m.Map(src, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Mapper) flatten(src any) (map[string]any, error) {
	v := reflect.ValueOf(src)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, ErrInvalidArgument
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, ErrInvalidArgument.Clone().WithMetadata(map[string]any{
			"kind": v.Kind().String(),
		})
	}

	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Name
		if tag := field.Tag.Get(TagName); tag != "" {
			if tag == "-" {
				continue
			}
			key = strings.Split(tag, ",")[0]
		}

		value := v.Field(i).Interface()
		if name, ok := m.fields[field.Name]; ok {
			converted, err := m.converters[name](value)
			if err != nil {
				return nil, errors.Wrap(err, errors.CategoryBadInput, ErrConversionFailed.Message).
		WithTextCode(TextCodeConversionFailed).
					WithMetadata(map[string]any{"field": field.Name, "converter": name})
			}
			value = converted
		}
		out[key] = value
	}
	return out, nil
}

func defaultConverters() map[string]Converter {
	return map[string]Converter{
		DateFromStringToObject:    dateFromString,
		CapitalizedFirstLetter:    withString(capitalize),
		ChangeAllLettersToLower:   withString(strings.ToLower),
		InsertNullIfStringIsEmpty: nullIfEmpty,
		ReturnEmptyStringIfIsNull: emptyIfNull,
	}
}

func withString(fn func(string) string) Converter {
	return func(value any) (any, error) {
		switch s := value.(type) {
		case string:
			return fn(s), nil
		case *string:
			if s == nil {
				return s, nil
			}
			out := fn(*s)
			return &out, nil
		default:
			return nil, fmt.Errorf("expected string, got %T", value)
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func dateFromString(value any) (any, error) {
	var raw string
	switch s := value.(type) {
	case string:
		raw = s
	case *string:
		if s == nil {
			return nil, nil
		}
		raw = *s
	case time.Time:
		return s, nil
	default:
		return nil, fmt.Errorf("expected date string, got %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return core.ParseDate(raw)
}

func nullIfEmpty(value any) (any, error) {
	switch s := value.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
	case *string:
		if s == nil || strings.TrimSpace(*s) == "" {
			return nil, nil
		}
	}
	return value, nil
}

func emptyIfNull(value any) (any, error) {
	switch s := value.(type) {
	case nil:
		return "", nil
	case *string:
		if s == nil {
			return "", nil
		}
		return *s, nil
	}
	return value, nil
}
