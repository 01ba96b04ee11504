package security

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OtaTokens stores one time access tokens.
type OtaTokens interface {
	repository.Repository[*OtaToken]

	GetByToken(ctx context.Context, token string, purpose OtaPurpose) (*OtaToken, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string, purpose OtaPurpose) (*OtaToken, error)
	MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error
	RevokeForUserTx(ctx context.Context, tx bun.IDB, userID string, purpose OtaPurpose, at time.Time) error
}

type otaTokens struct {
	repository.Repository[*OtaToken]
	db *bun.DB
}

var _ OtaTokens = (*otaTokens)(nil)

// NewOtaTokensRepository creates the bun backed OtaTokens repository.
func NewOtaTokensRepository(db *bun.DB) OtaTokens {
	handlers := repository.ModelHandlers[*OtaToken]{
		NewRecord: func() *OtaToken {
			return &OtaToken{}
		},
		GetID: func(record *OtaToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *OtaToken, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	}
	return &otaTokens{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (o *otaTokens) GetByToken(ctx context.Context, token string, purpose OtaPurpose) (*OtaToken, error) {
	return o.GetByTokenTx(ctx, o.db, token, purpose)
}

func (o *otaTokens) GetByTokenTx(ctx context.Context, tx bun.IDB, token string, purpose OtaPurpose) (*OtaToken, error) {
	record := &OtaToken{}
	q := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", strings.TrimSpace(token))

	if purpose != "" {
		q = q.Where("?TableAlias.purpose = ?", purpose)
	}

	if err := q.OrderExpr("?TableAlias.created_at DESC").Limit(1).Scan(ctx); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrOtaTokenNotFound.Clone().
				WithMetadata(map[string]any{
					"purpose": purpose,
				})
		}
		return nil, err
	}
	return record, nil
}

// MarkUsedTx sets used_at only on tokens that were not used yet. A token
// consumed concurrently yields ErrOtaTokenUsed.
func (o *otaTokens) MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	res, err := tx.NewUpdate().
		Model(MarkOtaTokenAsUsed(id, at)).
		Column("used_at", "updated_at").
		WherePK().
		Where("?TableAlias.used_at IS NULL").
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOtaTokenUsed.Clone().WithMetadata(map[string]any{"id": id.String()})
	}
	return nil
}

// RevokeForUserTx marks every pending token of userID for purpose as used.
func (o *otaTokens) RevokeForUserTx(ctx context.Context, tx bun.IDB, userID string, purpose OtaPurpose, at time.Time) error {
	record := &OtaToken{UsedAt: &at, UpdatedAt: &at}
	_, err := tx.NewUpdate().
		Model(record).
		Column("used_at", "updated_at").
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.purpose = ?", purpose).
		Where("?TableAlias.used_at IS NULL").
		Exec(ctx)
	return err
}
