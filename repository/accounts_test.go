package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/oauth2"
	"github.com/goliatone/go-security/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateAccounts = `CREATE TABLE oauth2_accounts (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    supplier TEXT NOT NULL,
    provider_id TEXT NOT NULL,
    email TEXT,
    name TEXT,
    avatar_url TEXT,
    access_token TEXT,
    refresh_token TEXT,
    token_expires_at TIMESTAMP,
    attributes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (supplier, provider_id)
)`

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { _ = bunDB.Close() })

	_, err = bunDB.Exec(sqliteCreateAccounts)
	require.NoError(t, err)
	return bunDB
}

func TestAccountsUpsertAndFind(t *testing.T) {
	ctx := context.Background()
	accounts := repository.NewAccounts(setupDB(t))

	account := &oauth2.Account{
		UserID:     "user-1",
		Supplier:   oauth2.SupplierGitHub,
		ProviderID: "42",
		Email:      "octo@example.com",
		Name:       "Octo",
		Attributes: map[string]any{"login": "octo"},
	}
	require.NoError(t, accounts.Upsert(ctx, account))
	require.NotEmpty(t, account.ID)

	found, err := accounts.FindBySupplierID(ctx, oauth2.SupplierGitHub, "42")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, "user-1", found.UserID)
	assert.Equal(t, "octo@example.com", found.Email)
	assert.Equal(t, "octo", found.Attributes["login"])

	list, err := accounts.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, oauth2.SupplierGitHub, list[0].Supplier)
}

func TestAccountsUpsertUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	accounts := repository.NewAccounts(setupDB(t))

	first := &oauth2.Account{UserID: "user-1", Supplier: oauth2.SupplierGoogle, ProviderID: "g-1", Email: "old@example.com"}
	require.NoError(t, accounts.Upsert(ctx, first))

	second := &oauth2.Account{UserID: "user-1", Supplier: oauth2.SupplierGoogle, ProviderID: "g-1", Email: "new@example.com"}
	require.NoError(t, accounts.Upsert(ctx, second))

	list, err := accounts.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new@example.com", list[0].Email)
}

func TestAccountsNotFound(t *testing.T) {
	accounts := repository.NewAccounts(setupDB(t))

	_, err := accounts.FindBySupplierID(context.Background(), oauth2.SupplierFacebook, "missing")
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, oauth2.TextCodeAccountNotFound, richErr.TextCode)
	assert.Equal(t, "missing", richErr.Metadata["provider_id"])

	list, err := accounts.FindByUserID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAccountsDelete(t *testing.T) {
	ctx := context.Background()
	accounts := repository.NewAccounts(setupDB(t))

	require.NoError(t, accounts.Upsert(ctx, &oauth2.Account{UserID: "u", Supplier: oauth2.SupplierGitHub, ProviderID: "1"}))
	require.NoError(t, accounts.Upsert(ctx, &oauth2.Account{UserID: "u", Supplier: oauth2.SupplierGoogle, ProviderID: "2"}))

	require.NoError(t, accounts.DeleteByUserAndSupplier(ctx, "u", oauth2.SupplierGitHub))

	list, err := accounts.FindByUserID(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, oauth2.SupplierGoogle, list[0].Supplier)
}

func TestManagerRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	manager := repository.NewManager(setupDB(t))
	manager.MustValidate()

	err := manager.RunInTx(ctx, nil, func(ctx context.Context, accounts *repository.Accounts) error {
		if err := accounts.Upsert(ctx, &oauth2.Account{UserID: "u", Supplier: oauth2.SupplierGitHub, ProviderID: "tx"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = manager.Accounts().FindBySupplierID(ctx, oauth2.SupplierGitHub, "tx")
	assert.Error(t, err)
}

func TestLocalUserIDIsStable(t *testing.T) {
	a, err := repository.LocalUserID(oauth2.SupplierGitHub, "42")
	require.NoError(t, err)
	b, err := repository.LocalUserID(oauth2.SupplierGitHub, "42")
	require.NoError(t, err)
	c, err := repository.LocalUserID(oauth2.SupplierGoogle, "42")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestAccountsUpsertSetsTimestamps(t *testing.T) {
	ctx := context.Background()
	accounts := repository.NewAccounts(setupDB(t))

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	account := &oauth2.Account{UserID: "u", Supplier: oauth2.SupplierLinkedIn, ProviderID: "li", TokenExpiresAt: &expires}
	require.NoError(t, accounts.Upsert(ctx, account))
	assert.False(t, account.CreatedAt.IsZero())
	assert.False(t, account.UpdatedAt.IsZero())
}
