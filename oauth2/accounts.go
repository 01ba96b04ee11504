package oauth2

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	security "github.com/goliatone/go-security"
)

const TextCodeAccountNotFound = "OAUTH2_ACCOUNT_NOT_FOUND"

// ErrAccountNotFound is returned by AccountRepository lookups that match
// nothing.
var ErrAccountNotFound = errors.New("linked oauth2 account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// Account links a supplier identity to a local user.
type Account struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Supplier       Supplier       `json:"supplier"`
	ProviderID     string         `json:"provider_id"`
	Email          string         `json:"email,omitempty"`
	Name           string         `json:"name,omitempty"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
	AccessToken    string         `json:"-"`
	RefreshToken   string         `json:"-"`
	TokenExpiresAt *time.Time     `json:"token_expires_at,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AccountRepository persists linked accounts.
type AccountRepository interface {
	FindBySupplierID(ctx context.Context, supplier Supplier, providerID string) (*Account, error)
	FindByUserID(ctx context.Context, userID string) ([]*Account, error)
	Upsert(ctx context.Context, account *Account) error
	DeleteByUserAndSupplier(ctx context.Context, userID string, supplier Supplier) error
}

// LocalUsers is the application user store used by AccountLinkingProcessor.
type LocalUsers interface {
	// FindUser returns the user linked to an account.
	FindUser(ctx context.Context, userID string) (security.AuthUserModel, error)
	// RegisterUser creates the local user for a first login and returns
	// its id.
	RegisterUser(ctx context.Context, info UserInfo) (string, security.AuthUserModel, error)
}

// AccountLinkingProcessor is a RegistrationProcessor that signs in the user
// linked to the supplier identity, registering one on first login.
type AccountLinkingProcessor struct {
	Accounts AccountRepository
	Users    LocalUsers
	Logger   Logger
}

// ProcessRegistration implements RegistrationProcessor.
func (p *AccountLinkingProcessor) ProcessRegistration(ctx context.Context, data RegistrationData) (*OAuth2User, error) {
	logger := loggerOrDefault(p.Logger)

	info, err := data.UserInfo()
	if err != nil {
		return nil, err
	}
	if info.ID() == "" {
		return nil, authenticationFailed(nil, map[string]any{
			"supplier": string(data.Supplier),
			"reason":   "missing supplier user id",
		})
	}

	var (
		userID string
		model  security.AuthUserModel
	)

	existing, err := p.Accounts.FindBySupplierID(ctx, data.Supplier, info.ID())
	switch {
	case err == nil:
		userID = existing.UserID
		if model, err = p.Users.FindUser(ctx, userID); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrAccountNotFound) || isTextCode(err, TextCodeAccountNotFound):
		if userID, model, err = p.Users.RegisterUser(ctx, info); err != nil {
			return nil, err
		}
		logger.Info("registered user %s from %s", userID, data.Supplier)
	default:
		return nil, err
	}

	account := &Account{
		UserID:     userID,
		Supplier:   data.Supplier,
		ProviderID: info.ID(),
		Email:      info.EmailAddress(),
		Name:       info.Username(),
		AvatarURL:  info.UserImageURL(),
		Attributes: info.Attributes(),
	}
	if existing != nil {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	}
	if err := p.Accounts.Upsert(ctx, account); err != nil {
		return nil, err
	}

	return FabricateUser(model, data)
}

func isTextCode(err error, code string) bool {
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == code
}
