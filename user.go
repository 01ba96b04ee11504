package security

import "slices"

// EnumerableUserRole is implemented by application role enumerations.
type EnumerableUserRole interface {
	Role() string
}

// GrantedRole is a single authority held by an authenticated user.
type GrantedRole string

func (g GrantedRole) Authority() string {
	return string(g)
}

// SimpleGrantedRole is the built in role enumeration.
type SimpleGrantedRole string

const RoleUser SimpleGrantedRole = "USER"

func (r SimpleGrantedRole) Role() string {
	return string(r)
}

// SimpleGrantedRoles returns every SimpleGrantedRole value.
func SimpleGrantedRoles() []EnumerableUserRole {
	return []EnumerableUserRole{RoleUser}
}

// AuthUserModel is implemented by domain user types that can sign in.
type AuthUserModel interface {
	AuthUsername() string
	AuthPassword() string
	AuthRoles() []EnumerableUserRole
	IsAccountEnabled() bool
	IsAccountNonLocked() bool
	IsAccountNotExpired() bool
	IsCredentialsNotExpired() bool
}

// BaseAuthUserModel can be embedded to get the default account flags:
// accounts start disabled while every other flag is true.
type BaseAuthUserModel struct{}

func (BaseAuthUserModel) IsAccountEnabled() bool        { return false }
func (BaseAuthUserModel) IsAccountNonLocked() bool      { return true }
func (BaseAuthUserModel) IsAccountNotExpired() bool     { return true }
func (BaseAuthUserModel) IsCredentialsNotExpired() bool { return true }

// AuthUser is the authenticated principal stored on the request.
type AuthUser struct {
	Username              string
	Password              string `json:"-"`
	Enabled               bool
	AccountNonLocked      bool
	AccountNonExpired     bool
	CredentialsNonExpired bool
	Authorities           []GrantedRole
	model                 AuthUserModel
}

// FabricateUser builds an AuthUser from model.
func FabricateUser(model AuthUserModel) (*AuthUser, error) {
	if model == nil {
		return nil, ErrNilUserModel
	}
	return &AuthUser{
		Username:              model.AuthUsername(),
		Password:              model.AuthPassword(),
		Enabled:               model.IsAccountEnabled(),
		AccountNonLocked:      model.IsAccountNonLocked(),
		AccountNonExpired:     model.IsAccountNotExpired(),
		CredentialsNonExpired: model.IsCredentialsNotExpired(),
		Authorities:           ConvertRolesToAuthorities(model.AuthRoles()),
		model:                 model,
	}, nil
}

// Model returns the domain object the user was built from.
func (u *AuthUser) Model() AuthUserModel {
	return u.model
}

// IsUsable reports whether every account flag allows signing in.
func (u *AuthUser) IsUsable() bool {
	return u.Enabled && u.AccountNonLocked && u.AccountNonExpired && u.CredentialsNonExpired
}

// HasRole reports whether the user holds role.
func (u *AuthUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Authorities, GrantedRole(role))
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *AuthUser) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// ConvertRolesToAuthorities maps roles to their authorities, dropping
// duplicates and nil entries.
func ConvertRolesToAuthorities(roles []EnumerableUserRole) []GrantedRole {
	out := make([]GrantedRole, 0, len(roles))
	for _, role := range roles {
		if role == nil {
			continue
		}
		g := GrantedRole(role.Role())
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}
