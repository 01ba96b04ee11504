package csrf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSecureKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

type captured struct {
	err error
}

func newTestApp(cfg Config, got *captured) *fiber.App {
	cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		got.err = err
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return c.SendStatus(richErr.Code)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	app := fiber.New()
	app.Use(New(cfg))
	RegisterRoutes(app)
	app.Post("/submit", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func fetchToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/csrf", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store, max-age=0", resp.Header.Get(fiber.HeaderCacheControl))

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, DefaultFormFieldName, out["field_name"])
	assert.Equal(t, DefaultHeaderName, out["header_name"])
	require.NotEmpty(t, out["token"])

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == DefaultCookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, out["token"], cookie.Value)
	assert.False(t, cookie.HttpOnly)

	return out["token"]
}

func post(t *testing.T, app *fiber.App, header, form string) *http.Response {
	t.Helper()
	var req *http.Request
	if form != "" {
		values := url.Values{DefaultFormFieldName: {form}}
		req = httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	}
	if header != "" {
		req.Header.Set(DefaultHeaderName, header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestStatelessTokenValidationSuccess(t *testing.T) {
	got := &captured{}
	app := newTestApp(Config{SecureKey: newTestSecureKey()}, got)

	token := fetchToken(t, app)

	resp := post(t, app, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, app, "", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, got.err)
}

func TestStatelessTokenValidationMismatch(t *testing.T) {
	got := &captured{}
	app := newTestApp(Config{SecureKey: newTestSecureKey()}, got)

	fetchToken(t, app)

	resp := post(t, app, "tampered", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.ErrorIs(t, got.err, ErrTokenMismatch)
}

func TestTokenMissing(t *testing.T) {
	got := &captured{}
	app := newTestApp(Config{SecureKey: newTestSecureKey()}, got)

	resp := post(t, app, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.ErrorIs(t, got.err, ErrTokenMissing)
}

func TestTokenSignedWithAnotherKey(t *testing.T) {
	token := fetchToken(t, newTestApp(Config{SecureKey: newTestSecureKey()}, &captured{}))

	got := &captured{}
	other := newTestApp(Config{SecureKey: []byte("fedcba9876543210fedcba9876543210")}, got)

	resp := post(t, other, token, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.ErrorIs(t, got.err, ErrTokenMismatch)
}

func TestStatelessTokenExpiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	got := &captured{}
	app := newTestApp(Config{
		SecureKey:  newTestSecureKey(),
		Expiration: time.Minute,
		now:        func() time.Time { return now },
	}, got)

	token := fetchToken(t, app)

	now = now.Add(2 * time.Minute)

	resp := post(t, app, token, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.ErrorIs(t, got.err, ErrTokenExpired)
}

func TestStorageBackedTokens(t *testing.T) {
	storage := NewMemoryStorage(16, time.Hour)
	got := &captured{}
	app := newTestApp(Config{Storage: storage}, got)

	first := fetchToken(t, app)
	second := fetchToken(t, app)
	assert.Equal(t, first, second, "token is reused while stored")

	resp := post(t, app, first, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, app, first+"x", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.ErrorIs(t, got.err, ErrTokenMismatch)
}

func TestSkipAndDisableCookie(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{
		SecureKey:     newTestSecureKey(),
		DisableCookie: true,
		Skip: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/webhooks")
		},
	}))
	app.Post("/webhooks/mail", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/page", func(c *fiber.Ctx) error {
		return c.SendString(TokenFrom(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/webhooks/mail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/page", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestGetExtractorsSkipsUnknownSources(t *testing.T) {
	extractors := getExtractors("header:X-Custom, query:token ,form:csrf", "", "")
	assert.Len(t, extractors, 2)

	extractors = getExtractors("", DefaultFormFieldName, DefaultHeaderName)
	assert.Len(t, extractors, 2)
}

func TestShortSecureKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		New(Config{SecureKey: []byte("short")})
	})
	assert.NotPanics(t, func() {
		New(Config{SecureKey: []byte("short"), Storage: NewMemoryStorage(0, time.Minute)})
	})
}
