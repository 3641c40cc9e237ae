package validation_test

import (
	"testing"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/core/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testPeriod(closed bool) *domain.FiscalPeriod {
	return &domain.FiscalPeriod{
		PeriodID:     "p1",
		TenantID:     "t1",
		FiscalYear:   2026,
		PeriodNumber: 4,
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		IsClosed:     closed,
	}
}

func testDocType() *domain.DocumentType {
	return &domain.DocumentType{
		DocTypeID: "dt1",
		TenantID:  "t1",
		Code:      "JV",
		IsActive:  true,
	}
}

func testAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"cash": {AccountID: "cash", TenantID: "t1", Code: "1000", AccountType: domain.Asset, IsActive: true},
		"rev":  {AccountID: "rev", TenantID: "t1", Code: "4000", AccountType: domain.Revenue, IsActive: true},
	}
}

func balancedInput() validation.Input {
	return validation.Input{
		Voucher: domain.Voucher{
			VoucherID:   "v1",
			TenantID:    "t1",
			DocTypeID:   "dt1",
			VoucherDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		Lines: []domain.VoucherLine{
			{LineNumber: 1, AccountID: "cash", Debit: dec("100.00")},
			{LineNumber: 2, AccountID: "rev", Credit: dec("100.00")},
		},
		Accounts: testAccounts(),
		Period:   testPeriod(false),
		DocType:  testDocType(),
	}
}

func TestValidate_BalancedVoucherPasses(t *testing.T) {
	res := validation.Validate(balancedInput())
	assert.True(t, res.OK(), "expected no errors, got %v", res.Errors)
}

func TestValidate_NoLines(t *testing.T) {
	in := balancedInput()
	in.Lines = nil
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeNoLines))
}

func TestValidate_SingleLine(t *testing.T) {
	in := balancedInput()
	in.Lines = in.Lines[:1]
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeSingleLine))
	assert.True(t, res.Has(validation.CodeUnbalanced))
}

func TestValidate_Unbalanced(t *testing.T) {
	in := balancedInput()
	in.Lines[1].Credit = dec("99.99")
	res := validation.Validate(in)
	assert.False(t, res.OK())
	assert.True(t, res.Has(validation.CodeUnbalanced))
}

func TestValidate_ExactDecimalEquality(t *testing.T) {
	// A sub-cent difference must fail; there is no epsilon tolerance.
	in := balancedInput()
	in.Lines[0].Debit = dec("100.0001")
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeUnbalanced))
}

func TestValidate_BothDebitAndCreditSet(t *testing.T) {
	in := balancedInput()
	in.Lines[0].Credit = dec("50.00")
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeDebitCreditExclusive))
}

func TestValidate_NeitherDebitNorCreditSet(t *testing.T) {
	in := balancedInput()
	in.Lines[0].Debit = decimal.Zero
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeDebitCreditExclusive))
}

func TestValidate_NegativeAmount(t *testing.T) {
	in := balancedInput()
	in.Lines[0].Debit = dec("-100.00")
	in.Lines[1].Credit = dec("-100.00")
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeNegativeAmount))
}

func TestValidate_AllZeroLines(t *testing.T) {
	in := balancedInput()
	in.Lines[0].Debit = decimal.Zero
	in.Lines[1].Credit = decimal.Zero
	res := validation.Validate(in)
	// Balanced (0 == 0) but still rejected as a zero voucher.
	assert.False(t, res.Has(validation.CodeUnbalanced))
	assert.True(t, res.Has(validation.CodeZeroVoucher))
}

func TestValidate_AccountMissing(t *testing.T) {
	in := balancedInput()
	in.Lines[0].AccountID = "ghost"
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeAccountMissing))
}

func TestValidate_AccountInactive(t *testing.T) {
	in := balancedInput()
	acc := in.Accounts["cash"]
	acc.IsActive = false
	in.Accounts["cash"] = acc
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeAccountInactive))
}

func TestValidate_PeriodMissing(t *testing.T) {
	in := balancedInput()
	in.Period = nil
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodePeriodMissing))
}

func TestValidate_PeriodClosed(t *testing.T) {
	in := balancedInput()
	in.Period = testPeriod(true)
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodePeriodClosed))
}

func TestValidate_DateOutsidePeriod(t *testing.T) {
	in := balancedInput()
	in.Voucher.VoucherDate = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeDateOutsidePeriod))
}

func TestValidate_DocTypeMissing(t *testing.T) {
	in := balancedInput()
	in.DocType = nil
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeDocTypeMissing))
}

func TestValidate_DocTypeInactive(t *testing.T) {
	in := balancedInput()
	dt := testDocType()
	dt.IsActive = false
	in.DocType = dt
	res := validation.Validate(in)
	assert.True(t, res.Has(validation.CodeDocTypeInactive))
}

func TestValidate_AccountTypeRestricted(t *testing.T) {
	in := balancedInput()
	dt := testDocType()
	dt.RestrictAccountTypes = []domain.AccountType{domain.Asset, domain.Liability}
	in.DocType = dt
	res := validation.Validate(in)
	// The revenue line violates the restriction; the cash line does not.
	assert.True(t, res.Has(validation.CodeAccountTypeRestricted))
	count := 0
	for _, e := range res.Errors {
		if e.Code == validation.CodeAccountTypeRestricted {
			count++
			assert.Equal(t, 2, e.Line)
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	in := balancedInput()
	in.Lines[0].AccountID = "ghost"
	in.Lines[1].Credit = dec("50.00")
	in.Period = testPeriod(true)
	res := validation.Validate(in)

	assert.True(t, res.Has(validation.CodeAccountMissing))
	assert.True(t, res.Has(validation.CodeUnbalanced))
	assert.True(t, res.Has(validation.CodePeriodClosed))
	assert.GreaterOrEqual(t, len(res.Errors), 3)
}
