package security

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	DefaultExpiredMinutes          = 5
	DefaultRefreshTokenExpiredDays = 90
)

// JWTConfig holds the signing settings.
type JWTConfig struct {
	// Secret is the base64 encoded HMAC key.
	Secret                  string
	Issuer                  string
	ExpiredMinutes          int
	RefreshTokenExpiredDays int
}

// JWTOption customizes a JWTService.
type JWTOption func(*JWTService)

// WithJWTLogger sets the logger used to report rejected tokens.
func WithJWTLogger(logger Logger) JWTOption {
	return func(s *JWTService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJWTClock replaces time.Now for both signing and validation.
func WithJWTClock(now func() time.Time) JWTOption {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

// JWTService signs and verifies HS256 tokens.
type JWTService struct {
	signingKey    []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	logger        Logger
	now           func() time.Time
}

// NewJWTService creates a JWTService. Zero expiry values fall back to the
// defaults.
func NewJWTService(cfg JWTConfig, opts ...JWTOption) (*JWTService, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret.Clone().WithMetadata(map[string]any{
			"reason": fmt.Sprint(err),
		})
	}

	minutes := cfg.ExpiredMinutes
	if minutes <= 0 {
		minutes = DefaultExpiredMinutes
	}
	days := cfg.RefreshTokenExpiredDays
	if days <= 0 {
		days = DefaultRefreshTokenExpiredDays
	}

	s := &JWTService{
		signingKey:    key,
		issuer:        cfg.Issuer,
		accessExpiry:  time.Duration(minutes) * time.Minute,
		refreshExpiry: time.Duration(days) * 24 * time.Hour,
		logger:        defLogger{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTokenExpiry is the lifetime of tokens made by GenerateToken.
func (s *JWTService) AccessTokenExpiry() time.Duration {
	return s.accessExpiry
}

// RefreshTokenExpiry is the lifetime of tokens made by GenerateRefreshToken.
func (s *JWTService) RefreshTokenExpiry() time.Duration {
	return s.refreshExpiry
}

// GenerateToken signs an access token for subject. An exp value in claims
// is kept, iss and sub are always set by the service.
func (s *JWTService) GenerateToken(subject string, claims jwt.MapClaims) (string, error) {
	return s.generate(subject, claims, s.accessExpiry)
}

// GenerateRefreshToken signs a long lived token for subject.
func (s *JWTService) GenerateRefreshToken(subject string, claims jwt.MapClaims) (string, error) {
	return s.generate(subject, claims, s.refreshExpiry)
}

func (s *JWTService) generate(subject string, extra jwt.MapClaims, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	}
	if _, ok := claims["jti"]; !ok {
		claims["jti"] = uuid.NewString()
	}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["iss"] = s.issuer
	claims["sub"] = subject

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// ExtractToken returns the token carried by a bearer Authorization header,
// or an empty string.
func (s *JWTService) ExtractToken(header string) string {
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(BearerPrefix):])
}

// ExtractTokenFromRequest reads the Authorization header of c.
func (s *JWTService) ExtractTokenFromRequest(c *fiber.Ctx) string {
	return s.ExtractToken(c.Get(fiber.HeaderAuthorization))
}

// ExtractClaims returns the claims of a valid token.
func (s *JWTService) ExtractClaims(token string) (jwt.MapClaims, bool) {
	claims, err := s.UnsafeExtractClaims(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// UnsafeExtractClaims parses token and returns its claims together with a
// classified error. Claims are returned for expired tokens with a valid
// signature.
func (s *JWTService) UnsafeExtractClaims(token string) (jwt.MapClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenInvalid.Clone().WithMetadata(map[string]any{
			"type": ValidationOther.String(),
		})
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
		jwt.WithJSONNumber(),
	)
	if err == nil {
		return claims, nil
	}

	switch classify(err) {
	case ValidationExpired:
		return claims, ErrTokenExpired
	case ValidationMalformed:
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	default:
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(ErrTokenInvalid.Code)
	}
}

func (s *JWTService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		s.logger.Error("JWTService encountered unexpected signing method %v", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.signingKey, nil
}

// IsValid checks token and reports why it was rejected.
func (s *JWTService) IsValid(token string) ValidationResult {
	if strings.TrimSpace(token) == "" {
		s.logger.Warn("JWT rejected: %s", ValidationOther.Message())
		return ValidationResult{Type: ValidationOther}
	}

	_, err := jwt.Parse(token, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
	)
	if err == nil {
		return ValidationResult{Valid: true, Type: ValidationGood}
	}

	vt := classify(err)
	s.logger.Warn("JWT rejected: %s %v", vt.Message(), err)
	return ValidationResult{Type: vt}
}

// ValidateRefreshToken returns the numeric userIDClaim of an expired token
// that still carries a valid signature. Valid tokens and any other failure
// yield false.
func (s *JWTService) ValidateRefreshToken(expiredToken, userIDClaim string) (int64, bool) {
	claims, err := s.UnsafeExtractClaims(expiredToken)
	if err == nil || !IsTokenExpiredError(err) || claims == nil {
		return 0, false
	}
	return numericClaim(claims[userIDClaim])
}

func classify(err error) ValidationType {
	switch {
	case err == nil:
		return ValidationGood
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ValidationMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ValidationExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ValidationOther
	default:
		return ValidationInvalid
	}
}

func numericClaim(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
