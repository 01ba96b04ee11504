package core

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// EnumCodec maps string backed enum values to and from their persisted
// representation. Parsing is case insensitive.
type EnumCodec[T ~string] struct {
	values []T
	lookup map[string]T
}

// NewEnumCodec creates a codec for the given set of values.
func NewEnumCodec[T ~string](values ...T) EnumCodec[T] {
	lookup := make(map[string]T, len(values))
	for _, v := range values {
		lookup[strings.ToLower(string(v))] = v
	}
	return EnumCodec[T]{values: values, lookup: lookup}
}

// Values returns the known enum values.
func (c EnumCodec[T]) Values() []T {
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

// Has reports whether raw maps to a known value.
func (c EnumCodec[T]) Has(raw string) bool {
	_, ok := c.lookup[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Parse returns the enum value matching raw.
func (c EnumCodec[T]) Parse(raw string) (T, error) {
	if v, ok := c.lookup[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v, nil
	}
	var zero T
	return zero, ErrUnknownEnumValue.Clone().WithMetadata(map[string]any{
		"value":     raw,
		"available": c.Strings(),
	})
}

// Strings returns the values as plain strings.
func (c EnumCodec[T]) Strings() []string {
	out := make([]string, len(c.values))
	for i, v := range c.values {
		out[i] = string(v)
	}
	return out
}

// ToDatabase returns the persisted form of v.
func (c EnumCodec[T]) ToDatabase(v T) (driver.Value, error) {
	if v == "" {
		return nil, nil
	}
	if !c.Has(string(v)) {
		return nil, ErrUnknownEnumValue.Clone().WithMetadata(map[string]any{"value": string(v)})
	}
	return strings.ToLower(string(v)), nil
}

// FromDatabase decodes a persisted value into dst.
func (c EnumCodec[T]) FromDatabase(src any, dst *T) error {
	switch raw := src.(type) {
	case nil:
		*dst = ""
		return nil
	case string:
		v, err := c.Parse(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	case []byte:
		return c.FromDatabase(string(raw), dst)
	default:
		return fmt.Errorf("core: cannot scan %T into enum", src)
	}
}
