package oauth2

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-security/core/cookie"
)

const (
	CookieAuthRequest    = "oauth2_auth_request"
	CookieAfterLoginURI  = "after_login_uri"
	CookieAfterSignupURI = "after_signup_uri"

	// ParamBaseURI is the query parameter prefixed to the after login and
	// after signup paths.
	ParamBaseURI = "base_uri"
)

// Cookies returns the names of every cookie set during the flow.
func Cookies() []string {
	return []string{CookieAuthRequest, CookieAfterLoginURI, CookieAfterSignupURI}
}

// AuthorizationRequestRepository keeps the pending authorization request
// between the redirect and the callback.
type AuthorizationRequestRepository interface {
	Save(c *fiber.Ctx, req *AuthorizationRequest) error
	Load(c *fiber.Ctx) (*AuthorizationRequest, error)
	Remove(c *fiber.Ctx) (*AuthorizationRequest, error)
}

// CookieRequestRepository stores the request in an encrypted cookie.
type CookieRequestRepository struct {
	states StateManager
	maxAge int
	secure bool
}

// NewCookieRequestRepository creates a repository whose cookies live for
// cookieExpiredMinutes.
func NewCookieRequestRepository(states StateManager, cookieExpiredMinutes int, secure bool) *CookieRequestRepository {
	return &CookieRequestRepository{
		states: states,
		maxAge: cookieExpiredMinutes * 60,
		secure: secure,
	}
}

// Save stores req. A nil req clears every flow cookie. The after login and
// after signup query parameters are stored as base_uri + "/" + value.
func (r *CookieRequestRepository) Save(c *fiber.Ctx, req *AuthorizationRequest) error {
	if req == nil {
		cookie.DeleteMultiple(c, Cookies()...)
		return nil
	}

	value, err := r.states.Encode(req)
	if err != nil {
		return err
	}
	if err := r.add(c, CookieAuthRequest, value); err != nil {
		return err
	}

	for _, name := range []string{CookieAfterLoginURI, CookieAfterSignupURI} {
		path := c.Query(name)
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := r.add(c, name, c.Query(ParamBaseURI)+"/"+path); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the stored request.
func (r *CookieRequestRepository) Load(c *fiber.Ctx) (*AuthorizationRequest, error) {
	value, ok := cookie.Get(c, CookieAuthRequest)
	if !ok {
		return nil, authenticationFailed(nil, map[string]any{"cookie": CookieAuthRequest})
	}
	req, err := r.states.Decode(value)
	if err != nil {
		return nil, authenticationFailed(err, map[string]any{"cookie": CookieAuthRequest})
	}
	return req, nil
}

// Remove returns the stored request. The cookies themselves are cleared by
// the success and failure resolvers.
func (r *CookieRequestRepository) Remove(c *fiber.Ctx) (*AuthorizationRequest, error) {
	return r.Load(c)
}

func (r *CookieRequestRepository) add(c *fiber.Ctx, name, value string) error {
	return cookie.Add(c, cookie.Payload{
		Name:   name,
		Value:  value,
		MaxAge: r.maxAge,
		Secure: r.secure,
	})
}
