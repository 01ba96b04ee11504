package oauth2

import (
	"context"
	"maps"

	security "github.com/goliatone/go-security"
)

// RegistrationData is handed to the application after the supplier
// returned the user profile.
type RegistrationData struct {
	Supplier   Supplier
	Attributes map[string]any
	// IDToken holds the verified OIDC claims, when the supplier sent an
	// id token.
	IDToken map[string]any
}

// UserInfo returns the normalized view of Attributes.
func (d RegistrationData) UserInfo() (UserInfo, error) {
	return NewUserInfo(d.Supplier, d.Attributes)
}

// RegistrationProcessor finds or creates the local account for an OAuth2
// login.
type RegistrationProcessor interface {
	ProcessRegistration(ctx context.Context, data RegistrationData) (*OAuth2User, error)
}

// RegistrationProcessorFunc adapts a function to RegistrationProcessor.
type RegistrationProcessorFunc func(ctx context.Context, data RegistrationData) (*OAuth2User, error)

func (f RegistrationProcessorFunc) ProcessRegistration(ctx context.Context, data RegistrationData) (*OAuth2User, error) {
	return f(ctx, data)
}

// OAuth2User is an AuthUser signed in through a supplier.
type OAuth2User struct {
	*security.AuthUser
	Supplier      Supplier
	Attributes    map[string]any
	IDTokenClaims map[string]any
}

// FabricateUser builds an OAuth2User from the local model and the data
// returned by the supplier.
func FabricateUser(model security.AuthUserModel, data RegistrationData) (*OAuth2User, error) {
	user, err := security.FabricateUser(model)
	if err != nil {
		return nil, err
	}
	return &OAuth2User{
		AuthUser:      user,
		Supplier:      data.Supplier,
		Attributes:    maps.Clone(data.Attributes),
		IDTokenClaims: maps.Clone(data.IDToken),
	}, nil
}

// Name returns the local username.
func (u *OAuth2User) Name() string {
	return u.Username
}
