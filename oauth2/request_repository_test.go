package oauth2_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/oauth2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := oauth2.NewCookieRequestRepository(newStates(t), 3, false)

	app := fiber.New()
	app.Get("/save", func(c *fiber.Ctx) error {
		return repo.Save(c, &oauth2.AuthorizationRequest{Supplier: oauth2.SupplierGitHub, State: "st-1"})
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		return repo.Save(c, nil)
	})
	app.Get("/load", func(c *fiber.Ctx) error {
		req, err := repo.Remove(c)
		if err != nil {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return c.Status(richErr.Code).SendString(richErr.TextCode)
			}
			return err
		}
		return c.JSON(req)
	})
	return app
}

func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCookieRequestRepositorySaveAndLoad(t *testing.T) {
	app := newRequestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/save?after_login_uri=login&after_signup_uri=signup&base_uri=http://localhost:3000", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	authCookie := findCookie(cookies, oauth2.CookieAuthRequest)
	require.NotNil(t, authCookie)
	assert.True(t, authCookie.HttpOnly)
	assert.Equal(t, 180, authCookie.MaxAge)

	require.NotNil(t, findCookie(cookies, oauth2.CookieAfterLoginURI))
	assert.Equal(t, "http://localhost:3000/login", findCookie(cookies, oauth2.CookieAfterLoginURI).Value)
	assert.Equal(t, "http://localhost:3000/signup", findCookie(cookies, oauth2.CookieAfterSignupURI).Value)

	req := httptest.NewRequest(http.MethodGet, "/load", nil)
	req.Header.Set("Cookie", cookieHeader(cookies))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded oauth2.AuthorizationRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loaded))
	assert.Equal(t, oauth2.SupplierGitHub, loaded.Supplier)
	assert.Equal(t, "st-1", loaded.State)
}

func TestCookieRequestRepositoryLoadWithoutCookie(t *testing.T) {
	app := newRequestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/load", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/load", nil)
	req.Header.Set("Cookie", oauth2.CookieAuthRequest+"=garbage")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCookieRequestRepositorySaveNilClearsCookies(t *testing.T) {
	app := newRequestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/clear", nil)
	req.Header.Set("Cookie", oauth2.CookieAuthRequest+"=x; "+oauth2.CookieAfterLoginURI+"=y")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	cleared := findCookie(resp.Cookies(), oauth2.CookieAuthRequest)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	require.NotNil(t, findCookie(resp.Cookies(), oauth2.CookieAfterLoginURI))
	assert.Nil(t, findCookie(resp.Cookies(), oauth2.CookieAfterSignupURI))
}
