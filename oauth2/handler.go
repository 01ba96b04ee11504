package oauth2

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	security "github.com/goliatone/go-security"
)

// DefaultPathPrefix is the prefix of the routes registered by Handler.
const DefaultPathPrefix = "/oauth2"

// Authorizer runs the supplier side of the authorization code flow.
// Client implements it.
type Authorizer interface {
	AuthCodeURL(supplier Supplier, state string) (string, error)
	Exchange(ctx context.Context, supplier Supplier, code string) (*TokenResponse, error)
}

// UserLoader resolves the local user for a token. UserService implements
// it.
type UserLoader interface {
	LoadUser(ctx context.Context, supplier Supplier, token *TokenResponse) (*OAuth2User, error)
}

// SuccessHandler finishes a successful login.
type SuccessHandler interface {
	OnSuccess(c *fiber.Ctx, user *OAuth2User) error
}

// FailureHandler finishes a failed login.
type FailureHandler interface {
	OnFailure(c *fiber.Ctx, err error) error
}

// HandlerConfig wires the Handler collaborators.
type HandlerConfig struct {
	PathPrefix   string
	Available    []Supplier
	Authorizer   Authorizer
	Requests     AuthorizationRequestRepository
	Users        UserLoader
	Success      SuccessHandler
	Failure      FailureHandler
	ActivitySink security.ActivitySink
	Logger       Logger
}

// Handler serves the authorize and callback routes.
type Handler struct {
	config HandlerConfig
	logger Logger
	sink   security.ActivitySink
}

// NewHandler creates a Handler. Every collaborator except the activity sink
// and the logger is required.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultPathPrefix
	}
	if cfg.Authorizer == nil || cfg.Requests == nil || cfg.Users == nil || cfg.Success == nil || cfg.Failure == nil {
		panic("oauth2: handler requires authorizer, requests, users, success and failure")
	}
	return &Handler{
		config: cfg,
		logger: loggerOrDefault(cfg.Logger),
		sink:   security.NormalizeActivitySink(cfg.ActivitySink),
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r fiber.Router) {
	g := r.Group(h.config.PathPrefix)
	g.Get("/suppliers", h.ListSuppliers).Name("oauth2.suppliers")
	g.Get("/authorize/:supplier", h.Authorize).Name("oauth2.authorize")
	g.Get("/callback/:supplier", h.Callback).Name("oauth2.callback")
}

// ListSuppliers returns the available supplier names.
func (h *Handler) ListSuppliers(c *fiber.Ctx) error {
	names := make([]string, 0, len(h.config.Available))
	for _, s := range h.config.Available {
		names = append(names, string(s))
	}
	return c.JSON(fiber.Map{"suppliers": names})
}

// Authorize stores a new authorization request and redirects to the
// supplier.
func (h *Handler) Authorize(c *fiber.Ctx) error {
	supplier, err := CheckSupplierExists(c.Params("supplier"), h.config.Available)
	if err != nil {
		return err
	}

	state := GenerateState()
	authURL, err := h.config.Authorizer.AuthCodeURL(supplier, state)
	if err != nil {
		return err
	}

	req := &AuthorizationRequest{
		Supplier:         supplier,
		State:            state,
		AuthorizationURI: authURL,
	}
	if err := h.config.Requests.Save(c, req); err != nil {
		return err
	}

	h.logger.Debug("redirecting to %s authorization", supplier)
	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback completes the flow started by Authorize.
func (h *Handler) Callback(c *fiber.Ctx) error {
	supplier, err := CheckSupplierExists(c.Params("supplier"), h.config.Available)
	if err != nil {
		return h.fail(c, supplier, err)
	}

	if code := c.Query("error"); code != "" {
		return h.fail(c, supplier, wrapProviderError(supplier, "authorize", &ProviderError{
			Supplier:    supplier,
			Operation:   "authorize",
			Code:        code,
			Description: c.Query("error_description"),
		}))
	}

	req, err := h.config.Requests.Remove(c)
	if err != nil {
		return h.fail(c, supplier, err)
	}

	if req.Supplier != supplier || subtle.ConstantTimeCompare([]byte(req.State), []byte(c.Query("state"))) != 1 {
		return h.fail(c, supplier, ErrInvalidState)
	}

	code := c.Query("code")
	if code == "" {
		return h.fail(c, supplier, authenticationFailed(nil, map[string]any{"reason": "missing authorization code"}))
	}

	ctx := c.UserContext()
	token, err := h.config.Authorizer.Exchange(ctx, supplier, code)
	if err != nil {
		return h.fail(c, supplier, err)
	}

	user, err := h.config.Users.LoadUser(ctx, supplier, token)
	if err != nil {
		return h.fail(c, supplier, err)
	}

	h.record(ctx, security.ActivityEvent{
		EventType: security.ActivityEventOAuth2Login,
		UserID:    user.Username,
		Metadata:  map[string]any{"supplier": string(supplier), "enabled": user.Enabled},
	})

	return h.config.Success.OnSuccess(c, user)
}

func (h *Handler) fail(c *fiber.Ctx, supplier Supplier, err error) error {
	h.record(c.UserContext(), security.ActivityEvent{
		EventType: security.ActivityEventOAuth2LoginError,
		Metadata:  map[string]any{"supplier": string(supplier), "error": err.Error()},
	})
	return h.config.Failure.OnFailure(c, err)
}

func (h *Handler) record(ctx context.Context, event security.ActivityEvent) {
	event.OccurredAt = time.Now()
	if err := h.sink.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during %s: %v", event.EventType, err)
	}
}
