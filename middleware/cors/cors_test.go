package cors_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-security/middleware/cors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFilter(t *testing.T) {
	reached := false
	app := fiber.New()
	app.Use(cors.HeaderFilter(cors.Config{Client: "http://localhost:4200", MaxAge: 600}))
	app.All("/api", func(c *fiber.Ctx) error {
		reached = true
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:4200", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET,POST,PUT,OPTIONS,PATCH,DELETE", resp.Header.Get(fiber.HeaderAccessControlAllowMethods))
	assert.Equal(t, "x-requested-with,authorization,Content-Type,Authorization,credential,X-XSRF-TOKEN",
		resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))
	assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
	assert.Equal(t, "600", resp.Header.Get(fiber.HeaderAccessControlMaxAge))
	assert.True(t, reached)

	reached = false
	resp, err = app.Test(httptest.NewRequest(http.MethodOptions, "/api", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
	assert.False(t, reached)
}

func TestHeaderFilterDefaultMaxAge(t *testing.T) {
	app := fiber.New()
	app.Use(cors.HeaderFilter(cors.Config{Client: "http://localhost:4200"}))

	resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/anything", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "3600", resp.Header.Get(fiber.HeaderAccessControlMaxAge))
}

func TestPolicy(t *testing.T) {
	app := fiber.New()
	app.Use(cors.Policy(cors.Config{Client: "http://localhost:4200"}))
	app.Get("/api", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:4200")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4200", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))

	req = httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://evil.example")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
