// Package cors sets the cross origin headers for the configured client
// application.
package cors

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"
)

// DefaultMaxAge is the preflight cache time in seconds.
const DefaultMaxAge = 3600

var (
	// Methods lists the REST methods allowed by HeaderFilter.
	Methods = []string{
		fiber.MethodGet,
		fiber.MethodPost,
		fiber.MethodPut,
		fiber.MethodOptions,
		fiber.MethodPatch,
		fiber.MethodDelete,
	}

	// Headers lists the request headers allowed by HeaderFilter.
	Headers = []string{
		"x-requested-with",
		"authorization",
		"Content-Type",
		"Authorization",
		"credential",
		"X-XSRF-TOKEN",
	}
)

type Config struct {
	// Client is the single allowed origin.
	Client string
	MaxAge int
	// AllowMethods overrides Methods in Policy.
	AllowMethods []string
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = Methods
	}
	return cfg
}

// HeaderFilter writes the CORS headers on every response. OPTIONS requests
// are answered with an empty 200 and never reach later handlers.
func HeaderFilter(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	methods := strings.Join(Methods, ",")
	headers := strings.Join(Headers, ",")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, cfg.Client)
		c.Set(fiber.HeaderAccessControlAllowMethods, methods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, headers)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlMaxAge, maxAge)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			return nil
		}
		return c.Next()
	}
}

// Policy is the origin aware variant backed by the fiber cors middleware.
// Headers are only written for requests coming from the client origin.
func Policy(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	return fibercors.New(fibercors.Config{
		AllowOrigins:     cfg.Client,
		AllowMethods:     strings.Join(cfg.AllowMethods, ","),
		AllowHeaders:     strings.Join(Headers, ","),
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
}
