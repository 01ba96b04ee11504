package security

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OtaPurpose tells what a one time access token grants.
type OtaPurpose = string

const (
	// OtaAccountActivation confirms a newly registered account
	OtaAccountActivation OtaPurpose = "account-activation"
	// OtaPasswordReset allows a single password change
	OtaPasswordReset OtaPurpose = "password-reset"
	// OtaEmailChange confirms a new e-mail address
	OtaEmailChange OtaPurpose = "email-change"
)

// OtaToken is a persisted one time access token
type OtaToken struct {
	bun.BaseModel `bun:"table:ota_tokens,alias:ota"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        string     `bun:"user_id,notnull" json:"user_id,omitempty"`
	Token         string     `bun:"token,notnull" json:"-"`
	Purpose       OtaPurpose `bun:"purpose,notnull" json:"purpose,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	UsedAt        *time.Time `bun:"used_at,nullzero" json:"used_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsUsed reports whether the token was already redeemed.
func (o *OtaToken) IsUsed() bool {
	return o.UsedAt != nil && !o.UsedAt.IsZero()
}

// IsExpired reports whether the token expired at now.
func (o *OtaToken) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// MarkOtaTokenAsUsed will create the update record for id
func MarkOtaTokenAsUsed(id uuid.UUID, at time.Time) *OtaToken {
	r := &OtaToken{}
	r.ID = id
	r.UsedAt = &at
	r.UpdatedAt = &at
	return r
}
