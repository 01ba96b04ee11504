package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager groups the account store with transaction support.
type Manager struct {
	db       *bun.DB
	accounts *Accounts
}

func NewManager(db *bun.DB) *Manager {
	return &Manager{
		db:       db,
		accounts: NewAccounts(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *Manager) Accounts() *Accounts {
	return m.accounts
}

// RunInTx runs f with an Accounts bound to a transaction.
func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, accounts *Accounts) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
			return f(ctx, NewAccounts(tx))
		})
	}
}
