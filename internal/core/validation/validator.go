package validation

import (
	"fmt"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Error codes reported by Validate. Handlers map these to field-level messages.
const (
	CodeNoLines               = "no_lines"
	CodeSingleLine            = "single_line"
	CodeDebitCreditExclusive  = "debit_credit_exclusive"
	CodeNegativeAmount        = "negative_amount"
	CodeZeroVoucher           = "zero_voucher"
	CodeUnbalanced            = "unbalanced"
	CodeAccountMissing        = "account_missing"
	CodeAccountInactive       = "account_inactive"
	CodeAccountTypeRestricted = "account_type_restricted"
	CodePeriodMissing         = "period_missing"
	CodePeriodClosed          = "period_closed"
	CodeDateOutsidePeriod     = "date_outside_period"
	CodeDocTypeMissing        = "doc_type_missing"
	CodeDocTypeInactive       = "doc_type_inactive"
)

// FieldError describes one validation failure. Line 0 means the error applies
// to the voucher header or the voucher as a whole.
type FieldError struct {
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result accumulates every validation failure so a caller sees all problems at
// once; checks never short-circuit.
type Result struct {
	Errors []FieldError `json:"errors"`
}

// OK reports whether the voucher passed every check.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(line int, field, code, message string) {
	r.Errors = append(r.Errors, FieldError{Line: line, Field: field, Code: code, Message: message})
}

// Has reports whether the result contains an error with the given code.
func (r Result) Has(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Input bundles a candidate voucher with the reference data its checks need.
// Accounts is keyed by account ID; a missing key means the account does not
// exist in the voucher's tenant (lookups are tenant-scoped upstream).
type Input struct {
	Voucher  domain.Voucher
	Lines    []domain.VoucherLine
	Accounts map[string]domain.Account
	Period   *domain.FiscalPeriod
	DocType  *domain.DocumentType
}

// Validate checks a candidate voucher against every structural and business
// rule, accumulating failures. It never mutates state and is safe to call any
// number of times. Permission checks live in the service layer, before this.
func Validate(in Input) Result {
	var res Result

	validateStructure(in, &res)
	validateBalance(in.Lines, &res)
	validatePeriod(in, &res)
	validateDocType(in, &res)

	return res
}

func validateStructure(in Input, res *Result) {
	if len(in.Lines) == 0 {
		res.add(0, "lines", CodeNoLines, "voucher must have at least one line")
		return
	}
	// Double-entry needs at least two lines; rejected structurally so the
	// caller gets a clearer error than an unbalanced-sum complaint.
	if len(in.Lines) == 1 {
		res.add(0, "lines", CodeSingleLine, "voucher must have at least two lines")
	}

	allZero := true
	for _, line := range in.Lines {
		n := line.LineNumber
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			res.add(n, "amount", CodeNegativeAmount, fmt.Sprintf("line %d: amounts must not be negative", n))
		}
		debitSet := !line.Debit.IsZero()
		creditSet := !line.Credit.IsZero()
		if debitSet == creditSet { // both set or both zero
			res.add(n, "amount", CodeDebitCreditExclusive, fmt.Sprintf("line %d: exactly one of debit or credit must be non-zero", n))
		}
		if debitSet || creditSet {
			allZero = false
		}

		acc, found := in.Accounts[line.AccountID]
		if !found {
			res.add(n, "accountID", CodeAccountMissing, fmt.Sprintf("line %d: account %s not found", n, line.AccountID))
			continue
		}
		if !acc.IsActive {
			res.add(n, "accountID", CodeAccountInactive, fmt.Sprintf("line %d: account %s is inactive", n, acc.Code))
		}
	}

	// All-zero vouchers are a structural defect, not a "balanced" voucher.
	if allZero {
		res.add(0, "lines", CodeZeroVoucher, "voucher has no non-zero amounts")
	}
}

func validateBalance(lines []domain.VoucherLine, res *Result) {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	// Exact equality: no epsilon tolerance on decimal amounts.
	if !debits.Equal(credits) {
		res.add(0, "lines", CodeUnbalanced,
			fmt.Sprintf("debits %s do not equal credits %s", debits.String(), credits.String()))
	}
}

func validatePeriod(in Input, res *Result) {
	if in.Period == nil {
		res.add(0, "periodID", CodePeriodMissing, "fiscal period not found")
		return
	}
	if in.Period.IsClosed {
		res.add(0, "periodID", CodePeriodClosed,
			fmt.Sprintf("fiscal period %s is closed", in.Period.Key()))
	}
	if !in.Voucher.VoucherDate.IsZero() && !in.Period.Contains(in.Voucher.VoucherDate) {
		res.add(0, "voucherDate", CodeDateOutsidePeriod,
			fmt.Sprintf("voucher date is outside fiscal period %s", in.Period.Key()))
	}
}

func validateDocType(in Input, res *Result) {
	if in.DocType == nil {
		res.add(0, "docTypeID", CodeDocTypeMissing, "document type not found")
		return
	}
	if !in.DocType.IsActive {
		res.add(0, "docTypeID", CodeDocTypeInactive,
			fmt.Sprintf("document type %s is inactive", in.DocType.Code))
	}
	if len(in.DocType.RestrictAccountTypes) == 0 {
		return
	}
	for _, line := range in.Lines {
		acc, found := in.Accounts[line.AccountID]
		if !found {
			continue // already reported by the structural pass
		}
		if !in.DocType.AllowsAccountType(acc.AccountType) {
			res.add(line.LineNumber, "accountID", CodeAccountTypeRestricted,
				fmt.Sprintf("line %d: account type %s not allowed for document type %s",
					line.LineNumber, acc.AccountType, in.DocType.Code))
		}
	}
}
