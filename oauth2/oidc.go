package oauth2

import (
	"context"
	"slices"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleIssuers lists the issuer values Google puts in id tokens.
var GoogleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// IDTokenValidator verifies an OIDC id token and returns its claims.
type IDTokenValidator interface {
	Verify(ctx context.Context, rawIDToken string) (map[string]any, error)
}

// IDTokenVerifierConfig configures an IDTokenVerifier.
type IDTokenVerifierConfig struct {
	// JWKSURL is fetched on creation and refreshed in the background. It is
	// ignored when Keyfunc is set.
	JWKSURL         string
	Keyfunc         jwt.Keyfunc
	Issuers         []string
	Audience        string
	RefreshInterval time.Duration
	Leeway          time.Duration
	Now             func() time.Time
	Logger          Logger
}

// IDTokenVerifier checks the signature, issuer, audience and expiry of id
// tokens against the supplier JWKS.
type IDTokenVerifier struct {
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	parser  *jwt.Parser
	issuers []string
	logger  Logger
}

// NewIDTokenVerifier creates a verifier. The JWKS is loaded before it
// returns when JWKSURL is used.
func NewIDTokenVerifier(cfg IDTokenVerifierConfig) (*IDTokenVerifier, error) {
	if cfg.Audience == "" {
		return nil, errors.New("id token audience is required", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	}

	logger := loggerOrDefault(cfg.Logger)
	v := &IDTokenVerifier{
		keyfunc: cfg.Keyfunc,
		issuers: cfg.Issuers,
		logger:  logger,
	}

	if v.keyfunc == nil {
		if cfg.JWKSURL == "" {
			return nil, errors.New("jwks url or keyfunc is required", errors.CategoryInternal).
				WithCode(errors.CodeInternal)
		}
		refresh := cfg.RefreshInterval
		if refresh == 0 {
			refresh = time.Hour
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   refresh,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Error("jwks refresh from %s failed: %v", cfg.JWKSURL, err)
			},
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "unable to load jwks").
				WithMetadata(map[string]any{"url": cfg.JWKSURL})
		}
		v.jwks = jwks
		v.keyfunc = jwks.Keyfunc
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}
	v.parser = jwt.NewParser(opts...)

	return v, nil
}

// NewGoogleIDTokenVerifier verifies tokens issued to clientID by Google.
func NewGoogleIDTokenVerifier(clientID string, logger Logger) (*IDTokenVerifier, error) {
	return NewIDTokenVerifier(IDTokenVerifierConfig{
		JWKSURL:  GoogleJWKSURL,
		Issuers:  GoogleIssuers,
		Audience: clientID,
		Leeway:   time.Minute,
		Logger:   logger,
	})
}

// Verify implements IDTokenValidator.
func (v *IDTokenVerifier) Verify(ctx context.Context, rawIDToken string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(rawIDToken, claims, v.keyfunc); err != nil {
		v.logger.Warn("id token rejected: %v", err)
		return nil, authenticationFailed(err, map[string]any{"operation": "id_token"})
	}

	if len(v.issuers) > 0 {
		iss, _ := claims.GetIssuer()
		if !slices.Contains(v.issuers, iss) {
			v.logger.Warn("id token issuer %q is not trusted", iss)
			return nil, authenticationFailed(jwt.ErrTokenInvalidIssuer, map[string]any{
				"operation": "id_token",
				"issuer":    iss,
			})
		}
	}

	return map[string]any(claims), nil
}

// Close stops the background JWKS refresh.
func (v *IDTokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
