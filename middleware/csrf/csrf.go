// Package csrf protects state changing requests with the X-XSRF-TOKEN
// header allowed by the CORS filter.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	security "github.com/goliatone/go-security"
)

const (
	TextCodeTokenMismatch    = "CSRF_TOKEN_MISMATCH"
	TextCodeTokenMissing     = "CSRF_TOKEN_MISSING"
	TextCodeTokenExpired     = "CSRF_TOKEN_EXPIRED"
	TextCodeSecureKeyMissing = "CSRF_SECURE_KEY_MISSING"
)

var (
	ErrTokenMismatch = errors.New("CSRF token mismatch", errors.CategoryAuthz).
				WithTextCode(TextCodeTokenMismatch).
				WithCode(errors.CodeForbidden)
	ErrTokenMissing = errors.New("CSRF token missing", errors.CategoryBadInput).
			WithTextCode(TextCodeTokenMissing).
			WithCode(errors.CodeBadRequest)
	ErrTokenExpired = errors.New("CSRF token expired", errors.CategoryAuthz).
			WithTextCode(TextCodeTokenExpired).
			WithCode(errors.CodeForbidden)
	ErrSecureKeyMissing = errors.New("CSRF secure key required for stateless mode", errors.CategoryInternal).
				WithTextCode(TextCodeSecureKeyMissing).
				WithCode(errors.CodeInternal)
)

// DefaultTokenLength is the default length for CSRF tokens
const DefaultTokenLength = 32

// DefaultContextKey is the default key for storing CSRF tokens in context
const DefaultContextKey = "csrf_token"

// DefaultFormFieldName is the default name for the CSRF token form field
const DefaultFormFieldName = "_csrf"

// DefaultHeaderName is the default header name for CSRF tokens
const DefaultHeaderName = "X-XSRF-TOKEN"

// DefaultCookieName is the cookie read by browser clients to echo the token
const DefaultCookieName = "XSRF-TOKEN"

// Config defines the configuration for CSRF middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(*fiber.Ctx) bool

	// TokenLength defines the length of the generated token
	TokenLength int

	// ContextKey defines the key for storing the token in context
	ContextKey string

	// FormFieldName defines the name of the form field containing the token
	FormFieldName string

	// HeaderName defines the header name for the token
	HeaderName string

	// CookieName is the readable cookie carrying the token. Set
	// DisableCookie to skip it.
	CookieName    string
	CookieSecure  bool
	DisableCookie bool

	// TokenLookup defines where to look for the token
	// Format: "header:X-XSRF-TOKEN,form:_csrf"
	TokenLookup string

	// Storage defines how tokens are stored and retrieved
	// If nil, tokens are signed per request (stateless)
	Storage Storage

	// ErrorHandler defines the error handler. The default returns the error
	// to the application error handler.
	ErrorHandler fiber.ErrorHandler

	// SuccessHandler defines the success handler
	SuccessHandler fiber.Handler

	// SafeMethods defines HTTP methods that don't require CSRF protection
	SafeMethods []string

	// Expiration defines how long tokens are valid
	Expiration time.Duration

	// SecureKey is used for token generation when using stateless mode
	SecureKey []byte

	now func() time.Time
}

// Storage interface for storing and retrieving CSRF tokens
type Storage interface {
	Get(key string) (string, error)
	Set(key string, value string, expiration time.Duration) error
	Delete(key string) error
}

// TokenExtractor defines a function to extract token from request
type TokenExtractor func(*fiber.Ctx) string

// New creates a new CSRF middleware
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	extractors := getExtractors(cfg.TokenLookup, cfg.FormFieldName, cfg.HeaderName)

	return func(c *fiber.Ctx) error {
		if cfg.Skip != nil && cfg.Skip(c) {
			return c.Next()
		}

		// safe methods don't require validation
		if slices.Contains(cfg.SafeMethods, strings.ToUpper(c.Method())) {
			token, err := getOrGenerateToken(c, cfg)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}
			exposeToken(c, cfg, token)
			return cfg.SuccessHandler(c)
		}

		if err := validateToken(c, cfg, extractors); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		return cfg.SuccessHandler(c)
	}
}

// TokenFrom returns the token stored by the middleware.
func TokenFrom(c *fiber.Ctx, key ...string) string {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	token, _ := c.Locals(k).(string)
	return token
}

func exposeToken(c *fiber.Ctx, cfg Config, token string) {
	c.Locals(cfg.ContextKey, token)
	c.Locals(cfg.ContextKey+"_field", cfg.FormFieldName)
	c.Locals(cfg.ContextKey+"_header", cfg.HeaderName)

	if cfg.DisableCookie {
		return
	}
	// browser clients read the cookie and echo it in HeaderName
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.Expiration.Seconds()),
		Secure:   cfg.CookieSecure,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// getOrGenerateToken generates or retrieves a CSRF token
func getOrGenerateToken(c *fiber.Ctx, cfg Config) (string, error) {
	if cfg.Storage != nil {
		// storage based mode, we check if token exists for this session/user
		sessionKey := getSessionKey(c)
		if token, err := cfg.Storage.Get(sessionKey); err == nil && token != "" {
			return token, nil
		}

		token, err := generateToken(cfg.TokenLength)
		if err != nil {
			return "", err
		}

		if err := cfg.Storage.Set(sessionKey, token, cfg.Expiration); err != nil {
			return "", err
		}

		return token, nil
	}

	return generateStatelessToken(c, cfg)
}

// validateToken validates the CSRF token from the request
func validateToken(c *fiber.Ctx, cfg Config, extractors []TokenExtractor) error {
	receivedToken := extractToken(c, extractors)
	if receivedToken == "" {
		return ErrTokenMissing
	}

	if cfg.Storage != nil {
		expectedToken, err := cfg.Storage.Get(getSessionKey(c))
		if err != nil || expectedToken == "" {
			return ErrTokenMismatch
		}
		if subtle.ConstantTimeCompare([]byte(receivedToken), []byte(expectedToken)) != 1 {
			return ErrTokenMismatch
		}
		return nil
	}

	return validateStatelessToken(c, cfg, receivedToken)
}

// generateToken generates a cryptographically secure random token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func generateStatelessToken(c *fiber.Ctx, cfg Config) (string, error) {
	if len(cfg.SecureKey) == 0 {
		return "", ErrSecureKeyMissing
	}

	nonce := make([]byte, cfg.TokenLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	timestamp := cfg.now().UTC().Unix()
	payload := fmt.Sprintf("%d:%s:%s", timestamp, hex.EncodeToString(nonce), getSessionKey(c))

	token := fmt.Sprintf("%s:%s", payload, hex.EncodeToString(sign(cfg.SecureKey, payload)))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func sign(key []byte, payload string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func validateStatelessToken(c *fiber.Ctx, cfg Config, token string) error {
	if len(cfg.SecureKey) == 0 {
		return ErrSecureKeyMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 {
		return ErrTokenMismatch
	}

	timestampStr, nonceHex, sessionFromToken, signatureHex := parts[0], parts[1], parts[2], parts[3]

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	if _, err := hex.DecodeString(nonceHex); err != nil {
		return ErrTokenMismatch
	}

	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return ErrTokenMismatch
	}

	if !hmac.Equal(signature, sign(cfg.SecureKey, strings.Join(parts[:3], ":"))) {
		return ErrTokenMismatch
	}

	if subtle.ConstantTimeCompare([]byte(sessionFromToken), []byte(getSessionKey(c))) != 1 {
		return ErrTokenMismatch
	}

	if cfg.Expiration > 0 {
		expiresAt := time.Unix(timestamp, 0).Add(cfg.Expiration)
		if cfg.now().UTC().After(expiresAt) {
			return ErrTokenExpired
		}
	}

	return nil
}

func extractToken(c *fiber.Ctx, extractors []TokenExtractor) string {
	for _, extractor := range extractors {
		if token := extractor(c); token != "" {
			return token
		}
	}
	return ""
}

// getSessionKey binds tokens to the authenticated user, falling back to the
// client IP for anonymous requests.
func getSessionKey(c *fiber.Ctx) string {
	if user, ok := security.AuthUserFromContext(c.UserContext()); ok && user.Username != "" {
		return "csrf_user_" + hex.EncodeToString([]byte(user.Username))
	}
	return "csrf_ip_" + c.IP()
}

// getExtractors returns token extractors based on configuration
func getExtractors(tokenLookup, formField, header string) []TokenExtractor {
	if tokenLookup == "" {
		return []TokenExtractor{
			extractorFromHeader(header),
			extractorFromForm(formField),
		}
	}

	var extractors []TokenExtractor
	for _, part := range strings.Split(tokenLookup, ",") {
		part = strings.TrimSpace(part)
		if field, ok := strings.CutPrefix(part, "form:"); ok {
			extractors = append(extractors, extractorFromForm(field))
		} else if headerName, ok := strings.CutPrefix(part, "header:"); ok {
			extractors = append(extractors, extractorFromHeader(headerName))
		}
	}
	return extractors
}

// extractorFromForm extracts token from form data
func extractorFromForm(fieldName string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		return c.FormValue(fieldName)
	}
}

// extractorFromHeader extracts token from request header
func extractorFromHeader(headerName string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(headerName)
	}
}

// configDefault returns a default config
func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultTokenLength
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodTrace}
	}

	if cfg.Expiration == 0 {
		cfg.Expiration = 24 * time.Hour
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(_ *fiber.Ctx, err error) error {
			return err
		}
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.now == nil {
		cfg.now = time.Now
	}

	cfg.SecureKey = initializeSecureKey(cfg.SecureKey, cfg.Storage)

	return cfg
}

func initializeSecureKey(current []byte, storage Storage) []byte {
	if storage != nil {
		return current
	}
	if len(current) > 0 {
		if len(current) < 32 {
			panic(fmt.Errorf("csrf: secure key must be at least 32 bytes, got %d", len(current)))
		}
		return current
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		panic(fmt.Errorf("csrf: unable to initialize secure key: %w", err))
	}
	return key
}
