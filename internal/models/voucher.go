package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Voucher maps to the vouchers table.
type Voucher struct {
	VoucherID     string          `json:"voucherID"`
	TenantID      string          `json:"tenantID"`
	DocTypeID     string          `json:"docTypeID"`
	PeriodID      *string         `json:"periodID"` // Nullable until resolved
	VoucherNumber *int64          `json:"voucherNumber"`
	VoucherDate   time.Time       `json:"voucherDate"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	ReversalOfID  *string         `json:"reversalOfID"`
	ReversedByID  *string         `json:"reversedByID"`
	Amount        decimal.Decimal `json:"amount"`
	PostedAt      *time.Time      `json:"postedAt"`
	AuditFields
}

// VoucherLine maps to the voucher_lines table.
type VoucherLine struct {
	LineID      string          `json:"lineID"`
	VoucherID   string          `json:"voucherID"`
	TenantID    string          `json:"tenantID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
	AuditFields
}
