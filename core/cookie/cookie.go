// Package cookie reads, writes and clears HTTP cookies on fiber contexts and
// serializes values stored in them.
package cookie

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCookieName = "cookie_invalid_name"
	TextCodeInvalidCookieData = "cookie_invalid_data"
)

var (
	ErrInvalidCookieName = errors.New("cookie name must not be blank", errors.CategoryBadInput).
		WithTextCode(TextCodeInvalidCookieName).
		WithCode(errors.CodeInternal)

	ErrInvalidCookieData = errors.New("unable to decode cookie value", errors.CategoryBadInput).
		WithTextCode(TextCodeInvalidCookieData).
		WithCode(errors.CodeBadRequest)
)

// Payload describes a cookie to set. MaxAge is expressed in seconds.
type Payload struct {
	Name   string
	Value  string
	MaxAge int
	Secure bool
}

// Get returns the value of the named request cookie.
func Get(c *fiber.Ctx, name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	value := c.Cookies(name)
	return value, value != ""
}

// Add sets an HttpOnly cookie scoped to "/".
func Add(c *fiber.Ctx, p Payload) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidCookieName
	}
	c.Cookie(&fiber.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		MaxAge:   p.MaxAge,
		HTTPOnly: true,
		Secure:   p.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Delete expires the named cookie when the request carries it.
func Delete(c *fiber.Ctx, name string) {
	if _, ok := Get(c, name); !ok {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
}

// DeleteMultiple expires every named cookie present on the request.
func DeleteMultiple(c *fiber.Ctx, names ...string) {
	for _, name := range names {
		Delete(c, name)
	}
}

// Serialize encodes v as base64url JSON.
func Serialize(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "unable to serialize cookie value")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Deserialize decodes a value produced by Serialize into v.
func Deserialize(raw string, v any) error {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ErrInvalidCookieData.Clone().WithMetadata(map[string]any{"error": err.Error()})
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrInvalidCookieData.Clone().WithMetadata(map[string]any{"error": err.Error()})
	}
	return nil
}
