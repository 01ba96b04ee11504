package security

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Validator checks that a component was wired before use.
type Validator interface {
	Validate() error
	MustValidate()
}

// TransactionManager runs f inside a database transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validator
	TransactionManager
	OtaTokens() OtaTokens
}

type mngr struct {
	db        *bun.DB
	otaTokens OtaTokens
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		otaTokens: NewOtaTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.otaTokens == nil {
		return errors.New("repository otaTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) OtaTokens() OtaTokens {
	return m.otaTokens
}
