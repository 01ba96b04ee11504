package oauth2

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v3/userinfo"
	FacebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,picture"
	GitHubUserInfoURL   = "https://api.github.com/user"
	LinkedInUserInfoURL = "https://api.linkedin.com/v2/me"

	// CallbackPath is appended to the callback base url, followed by the
	// supplier name.
	CallbackPath = "/oauth2/callback/"
)

// DefaultScopes returns the scopes requested when none are configured.
func DefaultScopes(supplier Supplier) []string {
	switch supplier {
	case SupplierGoogle:
		return []string{"openid", "email", "profile"}
	case SupplierFacebook:
		return []string{"email", "public_profile"}
	case SupplierGitHub:
		return []string{"read:user", "user:email"}
	case SupplierLinkedIn:
		return []string{"r_liteprofile", "r_emailaddress"}
	default:
		return nil
	}
}

// ClientConfig holds the registration of the application with a supplier.
// The URL fields override the well known endpoints.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// ClientsFromSettings builds one ClientConfig per available supplier.
func ClientsFromSettings(s config.OAuth2) (map[Supplier]ClientConfig, error) {
	out := make(map[Supplier]ClientConfig, len(s.AvailableSuppliers))
	for _, name := range s.AvailableSuppliers {
		supplier, err := ParseSupplier(name)
		if err != nil {
			return nil, err
		}
		if supplier == SupplierLocal {
			continue
		}
		client := s.Clients[name]
		out[supplier] = ClientConfig{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			Scopes:       client.Scopes,
			RedirectURL:  strings.TrimRight(s.CallbackBaseURL, "/") + CallbackPath + string(supplier),
		}
	}
	return out, nil
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the client used for every supplier call.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLinkedInEmailURI sets the endpoint used to read LinkedIn e-mails.
func WithLinkedInEmailURI(uri string) ClientOption {
	return func(c *Client) {
		if uri != "" {
			c.linkedInEmailURI = uri
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l Logger) ClientOption {
	return func(c *Client) {
		c.logger = loggerOrDefault(l)
	}
}

// Client performs the authorization code flow against the configured
// suppliers.
type Client struct {
	configs          map[Supplier]*xoauth2.Config
	userInfoURLs     map[Supplier]string
	linkedInEmailURI string
	httpClient       *http.Client
	logger           Logger
}

// NewClient creates a Client for the given suppliers. The local supplier
// has no remote endpoints and is rejected.
func NewClient(clients map[Supplier]ClientConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{
		configs:          make(map[Supplier]*xoauth2.Config, len(clients)),
		userInfoURLs:     make(map[Supplier]string, len(clients)),
		linkedInEmailURI: config.LinkedInEmailAddressURI,
		httpClient:       &http.Client{Timeout: 10 * time.Second},
		logger:           defLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	for supplier, cc := range clients {
		endpoint, userInfoURL, ok := wellKnown(supplier)
		if !ok {
			return nil, supplierNotImplemented(string(supplier))
		}
		if cc.AuthURL != "" {
			endpoint.AuthURL = cc.AuthURL
		}
		if cc.TokenURL != "" {
			endpoint.TokenURL = cc.TokenURL
		}
		if cc.UserInfoURL != "" {
			userInfoURL = cc.UserInfoURL
		}

		scopes := cc.Scopes
		if len(scopes) == 0 {
			scopes = DefaultScopes(supplier)
		}

		c.configs[supplier] = &xoauth2.Config{
			ClientID:     cc.ClientID,
			ClientSecret: cc.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cc.RedirectURL,
			Scopes:       scopes,
		}
		c.userInfoURLs[supplier] = userInfoURL
	}

	return c, nil
}

func wellKnown(supplier Supplier) (xoauth2.Endpoint, string, bool) {
	switch supplier {
	case SupplierGoogle:
		return endpoints.Google, GoogleUserInfoURL, true
	case SupplierFacebook:
		return endpoints.Facebook, FacebookUserInfoURL, true
	case SupplierGitHub:
		return endpoints.GitHub, GitHubUserInfoURL, true
	case SupplierLinkedIn:
		return endpoints.LinkedIn, LinkedInUserInfoURL, true
	default:
		return xoauth2.Endpoint{}, "", false
	}
}

// Suppliers returns the suppliers the client was configured with.
func (c *Client) Suppliers() []Supplier {
	out := make([]Supplier, 0, len(c.configs))
	for _, s := range Suppliers() {
		if _, ok := c.configs[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Client) config(supplier Supplier) (*xoauth2.Config, error) {
	cfg, ok := c.configs[supplier]
	if !ok {
		return nil, supplierNotImplemented(string(supplier))
	}
	return cfg, nil
}

// AuthCodeURL returns the supplier authorization url carrying state.
func (c *Client) AuthCodeURL(supplier Supplier, state string) (string, error) {
	cfg, err := c.config(supplier)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

// Exchange trades the authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, supplier Supplier, code string) (*TokenResponse, error) {
	cfg, err := c.config(supplier)
	if err != nil {
		return nil, err
	}

	tok, err := cfg.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		c.logger.Warn("token exchange with %s failed: %v", supplier, err)
		return nil, wrapProviderError(supplier, "exchange", err)
	}

	resp, err := NewTokenResponse(tok)
	if err != nil {
		return nil, wrapProviderError(supplier, "exchange", err)
	}
	return resp, nil
}

// FetchAttributes reads the user profile from the supplier. For LinkedIn
// the e-mail address is read from a separate endpoint.
func (c *Client) FetchAttributes(ctx context.Context, supplier Supplier, token *TokenResponse) (map[string]any, error) {
	if _, err := c.config(supplier); err != nil {
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return nil, wrapProviderError(supplier, "user_info", ErrMissingAccessToken)
	}

	attrs, err := c.getJSON(ctx, supplier, "user_info", c.userInfoURLs[supplier], token.AccessToken)
	if err != nil {
		return nil, wrapProviderError(supplier, "user_info", err)
	}

	if supplier == SupplierLinkedIn {
		if err := c.populateLinkedInEmail(ctx, token.AccessToken, attrs); err != nil {
			return nil, wrapProviderError(supplier, "email_address", err)
		}
	}

	return attrs, nil
}

// populateLinkedInEmail copies elements[0]["handle~"] into attrs.
func (c *Client) populateLinkedInEmail(ctx context.Context, accessToken string, attrs map[string]any) error {
	body, err := c.getJSON(ctx, SupplierLinkedIn, "email_address", c.linkedInEmailURI, accessToken)
	if err != nil {
		return err
	}

	elements, ok := body["elements"].([]any)
	if !ok || len(elements) == 0 {
		return &ProviderError{Supplier: SupplierLinkedIn, Operation: "email_address", Code: "missing_elements"}
	}
	first, ok := elements[0].(map[string]any)
	if !ok {
		return &ProviderError{Supplier: SupplierLinkedIn, Operation: "email_address", Code: "invalid_element"}
	}
	handle, ok := first["handle~"].(map[string]any)
	if !ok {
		return &ProviderError{Supplier: SupplierLinkedIn, Operation: "email_address", Code: "missing_handle"}
	}

	for k, v := range handle {
		attrs[k] = v
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, supplier Supplier, operation, url, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", TokenTypeBearer+" "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	decodeErr := decodeJSON(body, &out)

	if resp.StatusCode != http.StatusOK {
		perr := &ProviderError{Supplier: supplier, Operation: operation, Status: resp.StatusCode, Raw: out}
		if out != nil {
			perr.Code = stringValue(out["error"])
			perr.Description = stringValue(out["error_description"])
			if perr.Description == "" {
				perr.Description = stringValue(out["message"])
			}
		}
		return nil, perr
	}
	if decodeErr != nil {
		return nil, &ProviderError{
			Supplier:    supplier,
			Operation:   operation,
			Status:      resp.StatusCode,
			Code:        "invalid_response",
			Description: "failed to decode response",
			Err:         decodeErr,
		}
	}
	return out, nil
}

func decodeJSON(body []byte, out *map[string]any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid json body")
	}
	return nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
}
