// Package jwtware provides the fiber request filter that turns a bearer
// token into an authenticated security.AuthUser.
//
// A request without a token, or with a token that fails validation, keeps
// going through the chain unauthenticated. Use RequireAuthenticated and
// RequireRoles to guard routes.
package jwtware

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	security "github.com/goliatone/go-security"
	"github.com/goliatone/go-security/httperr"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
	ErrJWTInvalid            = errors.New("invalid or expired JWT")
	ErrMissingSubject        = errors.New("JWT subject claim is missing")
)

const (
	DefaultContextKey       = "user"
	DefaultClaimsContextKey = "claims"
)

// TokenValidator returns the claims of a valid token.
// *security.JWTService implements it.
type TokenValidator interface {
	ExtractClaims(token string) (jwt.MapClaims, bool)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(token string) (jwt.MapClaims, bool)

func (f TokenValidatorFunc) ExtractClaims(token string) (jwt.MapClaims, bool) {
	return f(token)
}

// ValidationListener is invoked after the user was loaded and before the
// request proceeds.
type ValidationListener func(c *fiber.Ctx, user *security.AuthUser, claims jwt.MapClaims) error

// Logger is the logging contract used by the filter.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] JWTWARE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] JWTWARE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] JWTWARE "+newline(format), args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] JWTWARE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type Config struct {
	Filter func(*fiber.Ctx) bool
	// ExcludedPaths are skipped entirely. Entries ending with /* match the
	// prefix.
	ExcludedPaths    []string
	SuccessHandler   fiber.Handler
	ContextKey       string
	ClaimsContextKey string
	TokenLookup      string
	AuthScheme       string

	// TokenValidator checks tokens signed by this service. When nil a
	// validator is built from KeyFunc, JWKSetURLs, SigningKeys or SigningKey.
	TokenValidator TokenValidator
	SigningKey     SigningKey
	SigningKeys    map[string]SigningKey
	KeyFunc        jwt.Keyfunc
	JWKSetURLs     []string

	// UserDetailsService loads the user named by the token subject.
	UserDetailsService security.UserDetailsService
	// SubjectResolver picks the username out of the claims. Defaults to sub.
	SubjectResolver func(jwt.MapClaims) (string, error)
	// RequireUsableAccount leaves disabled, locked or expired accounts
	// unauthenticated.
	RequireUsableAccount bool

	ValidationListeners []ValidationListener
	ActivitySink        security.ActivitySink
	Logger              Logger

	UnauthorizedHandler fiber.Handler
	ForbiddenHandler    fiber.Handler
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New returns the request filter.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		if cfg.isExcluded(c.Path()) {
			return c.Next()
		}

		raw, err := ExtractRawTokenFromContext(c, extractors)
		if err != nil || raw == "" {
			return c.Next()
		}

		claims, ok := cfg.TokenValidator.ExtractClaims(raw)
		if !ok {
			cfg.Logger.Debug("request %s %s carries an invalid token", c.Method(), c.Path())
			return c.Next()
		}

		username, err := cfg.SubjectResolver(claims)
		if err != nil {
			cfg.Logger.Debug("unable to resolve token subject: %v", err)
			return c.Next()
		}

		user, err := cfg.UserDetailsService.LoadUserByUsername(c.UserContext(), username)
		if err != nil || user == nil {
			cfg.Logger.Warn("unable to load user %q: %v", username, err)
			return c.Next()
		}

		if cfg.RequireUsableAccount && !user.IsUsable() {
			cfg.Logger.Debug("user %q account is not usable", username)
			return c.Next()
		}

		if err := cfg.runValidationListeners(c, user, claims); err != nil {
			return err
		}

		c.Locals(cfg.ContextKey, user)
		c.Locals(cfg.ClaimsContextKey, claims)
		c.SetUserContext(security.WithAuthUser(c.UserContext(), user))

		if cfg.ActivitySink != nil {
			if err := cfg.ActivitySink.Record(c.UserContext(), security.ActivityEvent{
				EventType:  security.ActivityEventAuthenticated,
				UserID:     user.Username,
				Metadata:   map[string]any{"path": c.Path()},
				OccurredAt: time.Now(),
			}); err != nil {
				cfg.Logger.Warn("activity sink error during authentication: %v", err)
			}
		}

		return cfg.SuccessHandler(c)
	}
}

// RequireAuthenticated answers 401 unless the filter stored a user.
func RequireAuthenticated(config ...Config) fiber.Handler {
	cfg := guardConfig(config...)
	return func(c *fiber.Ctx) error {
		if _, ok := UserFrom(c, cfg.ContextKey); !ok {
			return cfg.UnauthorizedHandler(c)
		}
		return c.Next()
	}
}

// RequireRoles answers 401 without a user and 403 when the user holds none
// of roles.
func RequireRoles(cfg Config, roles ...string) fiber.Handler {
	cfg = guardConfig(cfg)
	return func(c *fiber.Ctx) error {
		user, ok := UserFrom(c, cfg.ContextKey)
		if !ok {
			return cfg.UnauthorizedHandler(c)
		}
		if len(roles) > 0 && !user.HasAnyRole(roles...) {
			return cfg.ForbiddenHandler(c)
		}
		return c.Next()
	}
}

// UserFrom returns the user stored by the filter. The key defaults to
// DefaultContextKey.
func UserFrom(c *fiber.Ctx, key ...string) (*security.AuthUser, bool) {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	user, ok := c.Locals(k).(*security.AuthUser)
	return user, ok && user != nil
}

// ClaimsFrom returns the claims stored by the filter.
func ClaimsFrom(c *fiber.Ctx, key ...string) (jwt.MapClaims, bool) {
	k := DefaultClaimsContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	claims, ok := c.Locals(k).(jwt.MapClaims)
	return claims, ok
}

func guardConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.UnauthorizedHandler == nil {
		cfg.UnauthorizedHandler = httperr.Unauthorized
	}
	if cfg.ForbiddenHandler == nil {
		cfg.ForbiddenHandler = httperr.Forbidden
	}
	return cfg
}

func ExtractRawTokenFromContext(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	cfg = guardConfig(config...)

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.UserDetailsService == nil {
		panic("SECURITY: JWT middleware configuration: UserDetailsService is required.")
	}

	if cfg.ClaimsContextKey == "" {
		cfg.ClaimsContextKey = DefaultClaimsContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.SubjectResolver == nil {
		cfg.SubjectResolver = SubjectFromClaims
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	if cfg.TokenValidator == nil {
		cfg.TokenValidator = keyfuncValidator(cfg)
	}

	return cfg
}

// SubjectFromClaims returns the sub claim.
func SubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sub) == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

func keyfuncValidator(cfg Config) TokenValidator {
	if cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
		panic("SECURITY: JWT middleware configuration: At least one of the following is required: TokenValidator, KeyFunc, JWKSetURLs, SigningKeys, or SigningKey.")
	}

	kf := cfg.KeyFunc
	if kf == nil {
		if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}
			if len(cfg.JWKSetURLs) > 0 {
				var err error
				kf, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs)
				if err != nil {
					panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
				}
			} else {
				kf = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		} else {
			kf = signingKeyFunc(cfg.SigningKey)
		}
	}

	return TokenValidatorFunc(func(token string) (jwt.MapClaims, bool) {
		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, kf)
		if err != nil || !parsed.Valid {
			return nil, false
		}
		return claims, true
	})
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwtSetUrls []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwtSetUrls))
	for _, url := range jwtSetUrls {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) isExcluded(path string) bool {
	for _, excluded := range cfg.ExcludedPaths {
		if prefix, ok := strings.CutSuffix(excluded, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == excluded {
			return true
		}
	}
	return false
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, user *security.AuthUser, claims jwt.MapClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, user, claims); err != nil {
			return err
		}
	}
	return nil
}

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		if len(a) > l+1 && a[l] == ' ' && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}
