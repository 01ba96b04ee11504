package security

import "context"

var userCtxKey = &contextKey{"auth_user"}

type contextKey struct {
	name string
}

// WithAuthUser sets the AuthUser in the given context
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// AuthUserFromContext finds the user from the context.
func AuthUserFromContext(ctx context.Context) (*AuthUser, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(userCtxKey).(*AuthUser)
	return raw, ok && raw != nil
}
