// Package repository stores linked OAuth2 accounts with bun.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/oauth2"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OAuth2AccountModel is the Bun model for linked accounts.
type OAuth2AccountModel struct {
	bun.BaseModel `bun:"table:oauth2_accounts,alias:oa"`

	ID             uuid.UUID       `bun:"id,pk,nullzero,type:uuid"`
	UserID         string          `bun:"user_id,notnull"`
	Supplier       oauth2.Supplier `bun:"supplier,notnull"`
	ProviderID     string          `bun:"provider_id,notnull"`
	Email          string          `bun:"email"`
	Name           string          `bun:"name"`
	AvatarURL      string          `bun:"avatar_url"`
	AccessToken    string          `bun:"access_token"`
	RefreshToken   string          `bun:"refresh_token"`
	TokenExpiresAt *time.Time      `bun:"token_expires_at"`
	Attributes     map[string]any  `bun:"attributes,type:jsonb"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt      time.Time       `bun:"updated_at,nullzero,default:current_timestamp"`
}

// Accounts implements oauth2.AccountRepository.
type Accounts struct {
	db  bun.IDB
	now func() time.Time
}

var _ oauth2.AccountRepository = (*Accounts)(nil)

// NewAccounts creates a repository over db, which may be a transaction.
func NewAccounts(db bun.IDB) *Accounts {
	return &Accounts{db: db, now: time.Now}
}

// LocalUserID derives a stable user id from the supplier identity.
func LocalUserID(supplier oauth2.Supplier, providerID string) (string, error) {
	id, err := hashid.NewUUID(string(supplier) + ":" + providerID)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "unable to derive local user id")
	}
	return id.String(), nil
}

// FindBySupplierID implements oauth2.AccountRepository.
func (r *Accounts) FindBySupplierID(ctx context.Context, supplier oauth2.Supplier, providerID string) (*oauth2.Account, error) {
	model := new(OAuth2AccountModel)
	err := r.db.NewSelect().
		Model(model).
		Where("?TableAlias.supplier = ?", supplier).
		Where("?TableAlias.provider_id = ?", providerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauth2.ErrAccountNotFound.Clone().WithMetadata(map[string]any{
				"supplier":    string(supplier),
				"provider_id": providerID,
			})
		}
		return nil, err
	}
	return toAccount(model), nil
}

// FindByUserID implements oauth2.AccountRepository.
func (r *Accounts) FindByUserID(ctx context.Context, userID string) ([]*oauth2.Account, error) {
	var models []OAuth2AccountModel
	err := r.db.NewSelect().
		Model(&models).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	accounts := make([]*oauth2.Account, len(models))
	for i := range models {
		accounts[i] = toAccount(&models[i])
	}
	return accounts, nil
}

// Upsert implements oauth2.AccountRepository. Accounts are unique per
// supplier identity.
func (r *Accounts) Upsert(ctx context.Context, account *oauth2.Account) error {
	model := fromAccount(account)
	model.UpdatedAt = r.now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = model.UpdatedAt
	}

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (supplier, provider_id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("email = EXCLUDED.email").
		Set("name = EXCLUDED.name").
		Set("avatar_url = EXCLUDED.avatar_url").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("token_expires_at = EXCLUDED.token_expires_at").
		Set("attributes = EXCLUDED.attributes").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to store oauth2 account")
	}

	account.ID = model.ID.String()
	account.CreatedAt = model.CreatedAt
	account.UpdatedAt = model.UpdatedAt
	return nil
}

// DeleteByUserAndSupplier implements oauth2.AccountRepository.
func (r *Accounts) DeleteByUserAndSupplier(ctx context.Context, userID string, supplier oauth2.Supplier) error {
	_, err := r.db.NewDelete().
		Model((*OAuth2AccountModel)(nil)).
		Where("user_id = ?", userID).
		Where("supplier = ?", supplier).
		Exec(ctx)
	return err
}

func toAccount(m *OAuth2AccountModel) *oauth2.Account {
	return &oauth2.Account{
		ID:             m.ID.String(),
		UserID:         m.UserID,
		Supplier:       m.Supplier,
		ProviderID:     m.ProviderID,
		Email:          m.Email,
		Name:           m.Name,
		AvatarURL:      m.AvatarURL,
		AccessToken:    m.AccessToken,
		RefreshToken:   m.RefreshToken,
		TokenExpiresAt: m.TokenExpiresAt,
		Attributes:     m.Attributes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func fromAccount(a *oauth2.Account) *OAuth2AccountModel {
	id, err := uuid.Parse(a.ID)
	if err != nil || id == uuid.Nil {
		id = uuid.New()
	}

	attrs := a.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}

	return &OAuth2AccountModel{
		ID:             id,
		UserID:         a.UserID,
		Supplier:       a.Supplier,
		ProviderID:     a.ProviderID,
		Email:          a.Email,
		Name:           a.Name,
		AvatarURL:      a.AvatarURL,
		AccessToken:    a.AccessToken,
		RefreshToken:   a.RefreshToken,
		TokenExpiresAt: a.TokenExpiresAt,
		Attributes:     attrs,
		CreatedAt:      a.CreatedAt,
	}
}
