package oauth2

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AttributesFetcher reads the user profile with an access token.
type AttributesFetcher interface {
	FetchAttributes(ctx context.Context, supplier Supplier, token *TokenResponse) (map[string]any, error)
}

// UserServiceOption configures a UserService.
type UserServiceOption func(*UserService)

// WithIDTokenValidator verifies Google id tokens instead of calling the
// user info endpoint.
func WithIDTokenValidator(v IDTokenValidator) UserServiceOption {
	return func(s *UserService) {
		s.idTokens = v
	}
}

// WithUserServiceLogger sets the logger.
func WithUserServiceLogger(l Logger) UserServiceOption {
	return func(s *UserService) {
		s.logger = loggerOrDefault(l)
	}
}

// UserService loads the local user for a completed authorization.
type UserService struct {
	available []Supplier
	fetcher   AttributesFetcher
	processor RegistrationProcessor
	idTokens  IDTokenValidator
	logger    Logger
}

// NewUserService creates a UserService for the available suppliers.
func NewUserService(available []Supplier, fetcher AttributesFetcher, processor RegistrationProcessor, opts ...UserServiceOption) *UserService {
	s := &UserService{
		available: available,
		fetcher:   fetcher,
		processor: processor,
		logger:    defLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadUser resolves the attributes of the token owner and delegates the
// local registration to the processor. Errors that are not domain errors
// become ErrAuthenticationProcessing.
func (s *UserService) LoadUser(ctx context.Context, supplier Supplier, token *TokenResponse) (*OAuth2User, error) {
	user, err := s.loadUser(ctx, supplier, token)
	if err == nil {
		return user, nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return nil, err
	}
	s.logger.Error("oauth2 login with %s failed: %v", supplier, err)
	return nil, authenticationFailed(err, map[string]any{"supplier": string(supplier)})
}

func (s *UserService) loadUser(ctx context.Context, supplier Supplier, token *TokenResponse) (*OAuth2User, error) {
	if _, err := CheckSupplierExists(string(supplier), s.available); err != nil {
		return nil, err
	}

	data := RegistrationData{Supplier: supplier}

	if idToken := token.IDToken(); supplier == SupplierGoogle && idToken != "" && s.idTokens != nil {
		claims, err := s.idTokens.Verify(ctx, idToken)
		if err != nil {
			return nil, err
		}
		data.IDToken = claims
		data.Attributes = claims
	} else {
		attrs, err := s.fetcher.FetchAttributes(ctx, supplier, token)
		if err != nil {
			return nil, err
		}
		data.Attributes = attrs
	}

	user, err := s.processor.ProcessRegistration(ctx, data)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authenticationFailed(nil, map[string]any{"supplier": string(supplier)})
	}
	return user, nil
}
