package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditableEntity carries the identifier and audit timestamps shared by
// persisted models. Embed it in a bun model to get the columns and the
// timestamp hook.
type AuditableEntity struct {
	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*AuditableEntity)(nil)

// BeforeAppendModel assigns the id and stamps created_at/updated_at.
func (e *AuditableEntity) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := nowFunc().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.CreatedAt == nil {
			e.CreatedAt = &now
		}
		e.UpdatedAt = &now
	case *bun.UpdateQuery:
		e.UpdatedAt = &now
	}
	return nil
}
