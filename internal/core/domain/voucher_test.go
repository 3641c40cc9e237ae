package domain_test

import (
	"testing"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVoucherLine_SignedAmount(t *testing.T) {
	debit := domain.VoucherLine{Debit: decimal.NewFromInt(100)}
	credit := domain.VoucherLine{Credit: decimal.NewFromInt(100)}

	// Debits increase asset and expense balances.
	assert.True(t, debit.SignedAmount(domain.Asset).Equal(decimal.NewFromInt(100)))
	assert.True(t, debit.SignedAmount(domain.Expense).Equal(decimal.NewFromInt(100)))
	assert.True(t, credit.SignedAmount(domain.Asset).Equal(decimal.NewFromInt(-100)))

	// Credits increase liability, equity and revenue balances.
	assert.True(t, credit.SignedAmount(domain.Liability).Equal(decimal.NewFromInt(100)))
	assert.True(t, credit.SignedAmount(domain.Revenue).Equal(decimal.NewFromInt(100)))
	assert.True(t, debit.SignedAmount(domain.Equity).Equal(decimal.NewFromInt(-100)))
}

func TestVoucherLine_Swapped(t *testing.T) {
	line := domain.VoucherLine{
		AccountID: "cash",
		Debit:     decimal.NewFromInt(75),
		Credit:    decimal.Zero,
	}
	swapped := line.Swapped()
	assert.True(t, swapped.Debit.IsZero())
	assert.True(t, swapped.Credit.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, "cash", swapped.AccountID)

	// A line and its swap net to zero on any account type.
	for _, at := range []domain.AccountType{domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense} {
		sum := line.SignedAmount(at).Add(swapped.SignedAmount(at))
		assert.True(t, sum.IsZero(), "account type %s", at)
	}
}

func TestVoucher_Editable(t *testing.T) {
	assert.True(t, domain.Voucher{Status: domain.StatusDraft}.Editable())
	for _, st := range []domain.VoucherStatus{
		domain.StatusAwaitingApproval, domain.StatusApproved,
		domain.StatusPosted, domain.StatusReversed, domain.StatusCancelled,
	} {
		assert.False(t, domain.Voucher{Status: st}.Editable(), "status %s", st)
	}
}

func TestFiscalPeriod_KeyAndContains(t *testing.T) {
	p := domain.FiscalPeriod{
		FiscalYear:   2026,
		PeriodNumber: 4,
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2026-04", p.Key())

	assert.True(t, p.Contains(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestApprovalRule_Matches(t *testing.T) {
	min := decimal.NewFromInt(1000)
	rule := domain.ApprovalRule{MinAmount: &min, IsActive: true}

	assert.True(t, rule.Matches(decimal.NewFromInt(1000)))
	assert.True(t, rule.Matches(decimal.NewFromInt(5000)))
	assert.False(t, rule.Matches(decimal.NewFromInt(999)))

	unbounded := domain.ApprovalRule{IsActive: true}
	assert.True(t, unbounded.Matches(decimal.Zero))
}

func TestApprovalStep_Actionable(t *testing.T) {
	assert.True(t, domain.ApprovalStep{Status: domain.StepPending}.Actionable())
	assert.False(t, domain.ApprovalStep{Status: domain.StepApproved}.Actionable())
	assert.False(t, domain.ApprovalStep{Status: domain.StepRejected}.Actionable())
	assert.False(t, domain.ApprovalStep{Status: domain.StepCancelled}.Actionable())
}

func TestRoleDelegation_ActiveAt(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	d := domain.RoleDelegation{StartsAt: start, EndsAt: end}

	assert.True(t, d.ActiveAt(start))
	assert.True(t, d.ActiveAt(start.Add(24*time.Hour)))
	assert.False(t, d.ActiveAt(end))
	assert.False(t, d.ActiveAt(start.Add(-time.Second)))
}
