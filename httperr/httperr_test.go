package httperr_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/httperr"
	"github.com/goliatone/go-security/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Timestamp  string            `json:"servletTimestampUTC"`
	StatusCode int               `json:"statusCode"`
	StatusText string            `json:"statusText"`
	Path       string            `json:"path"`
	Method     string            `json:"method"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors"`
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	catalog, err := i18n.NewCatalog("en_US")
	require.NoError(t, err)
	resolver, err := i18n.NewResolver("en_US", []string{"pl_PL"})
	require.NoError(t, err)

	responder := httperr.NewResponder(catalog, resolver, nopLogger{})
	app := fiber.New(fiber.Config{ErrorHandler: responder.Handle})
	app.Use(responder.Recover())

	app.Get("/mail", func(c *fiber.Ctx) error {
		return errors.New("mail failed", errors.CategoryOperation).
			WithTextCode(i18n.KeyUnableToSendEmail).
			WithCode(http.StatusServiceUnavailable).
			WithMetadata(map[string]any{"emailAddress": "a@b.com"})
	})
	app.Get("/untranslated", func(c *fiber.Ctx) error {
		return errors.New("plain message", errors.CategoryBadInput).
			WithTextCode("unknown_code").
			WithCode(errors.CodeBadRequest)
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return validation.Errors{
			"email": errors.New("bad", errors.CategoryValidation).WithTextCode(i18n.KeyValidationPasswordsMatch),
			"name":  errors.New("is required", errors.CategoryValidation),
		}
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/opaque", func(c *fiber.Ctx) error {
		return assert.AnError
	})
	app.Get("/guarded", httperr.Unauthorized)
	return app
}

func do(t *testing.T, app *fiber.App, path, lang string) (*http.Response, body) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out body
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHandleRichError(t *testing.T) {
	app := newApp(t)

	resp, out := do(t, app, "/mail", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	assert.Equal(t, "SERVICE_UNAVAILABLE", out.StatusText)
	assert.Equal(t, "/mail", out.Path)
	assert.Equal(t, http.MethodGet, out.Method)
	assert.Equal(t, "Unable to send email message to a@b.com. Try again later.", out.Message)
	assert.NotEmpty(t, out.Timestamp)

	_, out = do(t, app, "/mail", "pl-PL")
	assert.Equal(t, "Nie udało się wysłać wiadomości email do a@b.com. Spróbuj ponownie później.", out.Message)
}

func TestHandleFallsBackToErrorMessage(t *testing.T) {
	resp, out := do(t, newApp(t), "/untranslated", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "plain message", out.Message)
}

func TestHandleValidationErrors(t *testing.T) {
	resp, out := do(t, newApp(t), "/invalid", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Passwords must match.", out.Errors["email"])
	assert.Equal(t, "is required", out.Errors["name"])
}

func TestHandleNotFoundPanicAndUnknown(t *testing.T) {
	app := newApp(t)

	resp, out := do(t, app, "/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Requested resource was not found.", out.Message)

	resp, out = do(t, app, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Unexpected server error. Try again later.", out.Message)

	resp, _ = do(t, app, "/opaque", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUnauthorized(t *testing.T) {
	resp, out := do(t, newApp(t), "/guarded", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", out.StatusText)
	assert.Equal(t, "You are not authenticated. Log in to access this resource.", out.Message)
}
