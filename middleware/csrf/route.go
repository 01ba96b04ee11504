package csrf

import "github.com/gofiber/fiber/v2"

const defaultRoutePath = "/csrf"

// RegisterRoutes registers a GET endpoint that returns the CSRF token and
// the names of the field and header expected on unsafe requests. The CSRF
// middleware must run before it.
func RegisterRoutes(r fiber.Router, path ...string) {
	p := defaultRoutePath
	if len(path) > 0 && path[0] != "" {
		p = path[0]
	}
	r.Get(p, TokenHandler(DefaultContextKey)).Name("security.csrf.get")
}

// TokenHandler answers with the token stored under contextKey.
func TokenHandler(contextKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFrom(c, contextKey)
		if token == "" {
			return ErrTokenMissing
		}

		c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")

		fieldName, _ := c.Locals(contextKey + "_field").(string)
		if fieldName == "" {
			fieldName = DefaultFormFieldName
		}

		headerName, _ := c.Locals(contextKey + "_header").(string)
		if headerName == "" {
			headerName = DefaultHeaderName
		}

		return c.JSON(fiber.Map{
			"token":       token,
			"field_name":  fieldName,
			"header_name": headerName,
		})
	}
}
