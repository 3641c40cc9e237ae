package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus indicates where a voucher is in its lifecycle.
type VoucherStatus string

const (
	StatusDraft            VoucherStatus = "DRAFT"
	StatusAwaitingApproval VoucherStatus = "AWAITING_APPROVAL"
	StatusApproved         VoucherStatus = "APPROVED"
	StatusPosted           VoucherStatus = "POSTED"
	StatusReversed         VoucherStatus = "REVERSED"
	StatusCancelled        VoucherStatus = "CANCELLED"
)

// Voucher is a proposed or committed set of balanced debit/credit lines.
// The number is nil until the voucher is posted; lines are mutable only in DRAFT.
type Voucher struct {
	VoucherID     string          `json:"voucherID"` // Primary Key (UUID)
	TenantID      string          `json:"tenantID"`  // FK -> tenants.tenant_id (NOT NULL)
	DocTypeID     string          `json:"docTypeID"` // FK -> document_types.doc_type_id
	PeriodID      string          `json:"periodID"`  // FK -> fiscal_periods.period_id
	VoucherNumber *int64          `json:"voucherNumber"` // Assigned once, at posting
	VoucherDate   time.Time       `json:"voucherDate"`
	Reference     string          `json:"reference"`   // External reference, nullable
	Description   string          `json:"description"` // Nullable user description
	Status        VoucherStatus   `json:"status"`
	ReversalOfID  *string         `json:"reversalOfID"` // Set on the reversing voucher
	ReversedByID  *string         `json:"reversedByID"` // Set on the original once reversed
	Amount        decimal.Decimal `json:"amount"`       // Debit-side total of a balanced voucher
	PostedAt      *time.Time      `json:"postedAt"`
	Lines         []VoucherLine   `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether the voucher was created to reverse another voucher.
func (v Voucher) IsReversal() bool {
	return v.ReversalOfID != nil
}

// Editable reports whether header and lines may still be modified.
func (v Voucher) Editable() bool {
	return v.Status == StatusDraft
}

// VoucherLine is a single debit or credit against one account. Exactly one of
// Debit/Credit is non-zero. Immutable once the parent voucher leaves DRAFT.
type VoucherLine struct {
	LineID      string          `json:"lineID"`    // Primary Key (UUID)
	VoucherID   string          `json:"voucherID"` // FK -> vouchers.voucher_id (NOT NULL)
	TenantID    string          `json:"tenantID"`  // Denormalized tenant scope
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"` // FK -> accounts.account_id (NOT NULL)
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"` // Nullable
	CostCenter  string          `json:"costCenter"`  // Optional dimension, nullable
	AuditFields
}

// SignedAmount returns the line's effect on its account's persisted balance:
// debits increase ASSET/EXPENSE accounts, credits increase the rest.
func (l VoucherLine) SignedAmount(accountType AccountType) decimal.Decimal {
	amount := l.Debit.Sub(l.Credit)
	switch accountType {
	case Asset, Expense:
		return amount
	default:
		return amount.Neg()
	}
}

// Swapped returns a copy of the line with debit and credit exchanged, for reversal.
func (l VoucherLine) Swapped() VoucherLine {
	out := l
	out.Debit = l.Credit
	out.Credit = l.Debit
	return out
}
