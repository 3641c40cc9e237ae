package repositories

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a single account within a tenant.
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by ID, keyed by account ID.
	// IDs belonging to other tenants are simply absent from the result.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves tenant accounts ordered by code.
	ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates mutable account fields (name, description).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount soft-deactivates an account; historical lines keep referencing it.
	DeactivateAccount(ctx context.Context, tenantID, accountID, actorID string, at time.Time) error
}

// AccountBalancer defines the balance operations used inside posting transactions.
type AccountBalancer interface {
	// FindAccountsByIDsForUpdate retrieves accounts and locks their rows.
	// Must be called within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies balance deltas within a transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, tenantID string, balanceChanges map[string]decimal.Decimal, actorID string, at time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalancer
}
