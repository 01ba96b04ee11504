package oauth2

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	security "github.com/goliatone/go-security"
	"github.com/goliatone/go-security/core"
	"github.com/goliatone/go-security/core/cookie"
)

// TokenGenerator issues the application token handed to the client after
// a successful login.
type TokenGenerator interface {
	GenerateToken(ctx context.Context, user *OAuth2User) (string, error)
}

// TokenGeneratorFunc adapts a function to TokenGenerator.
type TokenGeneratorFunc func(ctx context.Context, user *OAuth2User) (string, error)

func (f TokenGeneratorFunc) GenerateToken(ctx context.Context, user *OAuth2User) (string, error) {
	return f(ctx, user)
}

// JWTTokenGenerator signs access tokens with a security.JWTService.
type JWTTokenGenerator struct {
	service *security.JWTService
}

func NewJWTTokenGenerator(service *security.JWTService) *JWTTokenGenerator {
	return &JWTTokenGenerator{service: service}
}

// GenerateToken signs a token for the user with the supplier and the
// authorities as claims.
func (g *JWTTokenGenerator) GenerateToken(_ context.Context, user *OAuth2User) (string, error) {
	roles := make([]string, 0, len(user.Authorities))
	for _, role := range user.Authorities {
		roles = append(roles, role.Authority())
	}
	return g.service.GenerateToken(user.Username, jwt.MapClaims{
		"supplier": string(user.Supplier),
		"roles":    roles,
	})
}

// SuccessResolver redirects a signed in user back to the client.
type SuccessResolver struct {
	redirectURIs []*url.URL
	tokens       TokenGenerator
	logger       Logger
}

// NewSuccessResolver creates a resolver accepting the hosts of
// redirectURIs as targets.
func NewSuccessResolver(redirectURIs []string, tokens TokenGenerator, logger Logger) (*SuccessResolver, error) {
	r := &SuccessResolver{tokens: tokens, logger: loggerOrDefault(logger)}
	for _, raw := range redirectURIs {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Host == "" {
			return nil, core.ErrInvalidURI.Clone().WithMetadata(map[string]any{"uri": raw})
		}
		r.redirectURIs = append(r.redirectURIs, u)
	}
	return r, nil
}

// OnSuccess redirects to the after login target for enabled accounts and
// to the after signup target otherwise. The flow cookies are cleared.
func (r *SuccessResolver) OnSuccess(c *fiber.Ctx, user *OAuth2User) error {
	target, err := r.TargetURL(c, user)
	if err != nil {
		return err
	}
	cookie.DeleteMultiple(c, Cookies()...)
	return c.Redirect(target, fiber.StatusFound)
}

// TargetURL returns the redirect carrying the issued token.
func (r *SuccessResolver) TargetURL(c *fiber.Ctx, user *OAuth2User) (string, error) {
	name := CookieAfterSignupURI
	if user.Enabled {
		name = CookieAfterLoginURI
	}

	target, ok := cookie.Get(c, name)
	if !ok || !r.isAllowed(target) {
		r.logger.Error("attempt to authenticate via oauth2 with an unsupported uri")
		return "", ErrURINotSupported
	}

	token, err := r.tokens.GenerateToken(c.UserContext(), user)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "unable to generate token")
	}

	return core.RedirectTokenURI(token, target, string(user.Supplier))
}

func (r *SuccessResolver) isAllowed(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	for _, allowed := range r.redirectURIs {
		if strings.EqualFold(allowed.Hostname(), u.Hostname()) && allowed.Port() == u.Port() {
			return true
		}
	}
	return false
}

// Localizer returns the message shown to the user for err.
type Localizer interface {
	Message(c *fiber.Ctx, err error) string
}

// FailureResolver redirects back to the client with the error message.
type FailureResolver struct {
	localizer Localizer
	logger    Logger
}

// NewFailureResolver creates a resolver. httperr.Responder is a suitable
// Localizer; without one the error message is used as is.
func NewFailureResolver(localizer Localizer, logger Logger) *FailureResolver {
	return &FailureResolver{localizer: localizer, logger: loggerOrDefault(logger)}
}

// OnFailure redirects to the after login target, or "/", with the error
// message as the error query parameter.
func (r *FailureResolver) OnFailure(c *fiber.Ctx, err error) error {
	target, ok := cookie.Get(c, CookieAfterLoginURI)
	if !ok {
		target = "/"
	}
	r.logger.Error("oauth2 authorization failure: %v", err)
	cookie.DeleteMultiple(c, Cookies()...)

	redirect, uerr := core.RedirectErrorURI(r.message(c, err), target)
	if uerr != nil {
		return uerr
	}
	return c.Redirect(redirect, fiber.StatusFound)
}

func (r *FailureResolver) message(c *fiber.Ctx, err error) string {
	if r.localizer != nil {
		return r.localizer.Message(c, err)
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Message
	}
	return ErrAuthenticationProcessing.Message
}
