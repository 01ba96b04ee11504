package i18n

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// LocalsKey is the fiber Locals key holding the request locale.
const LocalsKey = "jmpsl_locale"

type localeCtxKey struct{}

// Middleware resolves the request locale and stores it on the fiber context
// and on the user context.
func Middleware(r *Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locale := r.ResolveRequest(c)
		c.Locals(LocalsKey, locale)
		c.SetUserContext(WithLocale(c.UserContext(), locale))
		c.Set(fiber.HeaderContentLanguage, locale)
		return c.Next()
	}
}

// LocaleFrom returns the locale stored by Middleware or "" when absent.
func LocaleFrom(c *fiber.Ctx) string {
	if locale, ok := c.Locals(LocalsKey).(string); ok {
		return locale
	}
	return ""
}

// WithLocale stores locale on ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeCtxKey{}, locale)
}

// FromContext returns the locale stored on ctx.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	locale, ok := ctx.Value(localeCtxKey{}).(string)
	return locale, ok && locale != ""
}
