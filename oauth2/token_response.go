package oauth2

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	xoauth2 "golang.org/x/oauth2"
)

const (
	ParamAccessToken  = "access_token"
	ParamTokenType    = "token_type"
	ParamExpiresIn    = "expires_in"
	ParamRefreshToken = "refresh_token"
	ParamScope        = "scope"
	ParamIDToken      = "id_token"

	TokenTypeBearer = "Bearer"
)

var tokenParameters = []string{ParamAccessToken, ParamTokenType, ParamExpiresIn, ParamRefreshToken, ParamScope}

// TokenResponse is the access token returned by a supplier.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	RefreshToken string
	Scopes       []string
	Additional   map[string]any
}

// IDToken returns the OIDC id token, if the supplier sent one.
func (t *TokenResponse) IDToken() string {
	if t == nil {
		return ""
	}
	return stringValue(t.Additional[ParamIDToken])
}

// OAuth2Token converts t for use with an x/oauth2 client.
func (t *TokenResponse) OAuth2Token() *xoauth2.Token {
	tok := &xoauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
	}
	return tok.WithExtra(maps.Clone(t.Additional))
}

// ConvertTokenResponse builds a TokenResponse from the raw token endpoint
// parameters. The token type is always Bearer and unknown parameters are
// kept in Additional.
func ConvertTokenResponse(params map[string]any) (*TokenResponse, error) {
	accessToken := stringValue(params[ParamAccessToken])
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	resp := &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    TokenTypeBearer,
		RefreshToken: stringValue(params[ParamRefreshToken]),
		Scopes:       []string{},
		Additional:   map[string]any{},
	}

	expiresIn, err := int64Value(params[ParamExpiresIn])
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid expires_in parameter")
	}
	resp.ExpiresIn = expiresIn

	if scope := stringValue(params[ParamScope]); scope != "" {
		resp.Scopes = strings.Fields(scope)
	}

	for k, v := range params {
		if slices.Contains(tokenParameters, k) {
			continue
		}
		resp.Additional[k] = v
	}

	return resp, nil
}

// NewTokenResponse converts the token returned by an x/oauth2 exchange.
// expires_in is read from the raw response so string values are accepted.
func NewTokenResponse(tok *xoauth2.Token) (*TokenResponse, error) {
	params := map[string]any{
		ParamAccessToken:  tok.AccessToken,
		ParamRefreshToken: tok.RefreshToken,
	}

	switch {
	case tok.Extra(ParamExpiresIn) != nil:
		params[ParamExpiresIn] = tok.Extra(ParamExpiresIn)
	case tok.ExpiresIn != 0:
		params[ParamExpiresIn] = tok.ExpiresIn
	case !tok.Expiry.IsZero():
		params[ParamExpiresIn] = int64(time.Until(tok.Expiry).Seconds())
	}

	for _, key := range []string{ParamScope, ParamIDToken} {
		if value := stringValue(tok.Extra(key)); value != "" {
			params[key] = value
		}
	}
	return ConvertTokenResponse(params)
}

func int64Value(v any) (int64, error) {
	switch typed := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(typed), nil
	case int64:
		return typed, nil
	case float64:
		return int64(typed), nil
	case json.Number:
		return typed.Int64()
	case string:
		if strings.TrimSpace(typed) == "" {
			return 0, nil
		}
		return strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
	default:
		return 0, strconv.ErrSyntax
	}
}
