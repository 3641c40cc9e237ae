package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a ledger account within a tenant's chart of accounts.
// Deactivation is soft (IsActive flag) so historical voucher lines keep a valid reference.
type Account struct {
	AccountID   string          `json:"accountID"`   // Primary Key (UUID)
	TenantID    string          `json:"tenantID"`    // FK -> tenants.tenant_id (NOT NULL)
	Code        string          `json:"code"`        // Unique within tenant
	Name        string          `json:"name"`        // User-defined name
	AccountType AccountType     `json:"accountType"` // ASSET, LIABILITY, etc.
	Description string          `json:"description"` // Nullable user description
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // Maintained only by the posting transaction
	AuditFields
}

// ValidAccountType reports whether t is one of the five fundamental account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}
