package models

import "github.com/shopspring/decimal"

// Account maps to the accounts table.
type Account struct {
	AccountID   string          `json:"accountID"`
	TenantID    string          `json:"tenantID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}
