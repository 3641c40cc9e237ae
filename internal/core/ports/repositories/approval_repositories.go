package repositories

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApprovalRuleReader defines read access to approval routing configuration.
type ApprovalRuleReader interface {
	// FindMatchingRule returns the highest-priority active rule for the given
	// document type and amount, or ErrNotFound when no rule matches.
	FindMatchingRule(ctx context.Context, tenantID, docTypeID string, amount decimal.Decimal) (*domain.ApprovalRule, error)

	// FindRuleByID retrieves a single rule within a tenant.
	FindRuleByID(ctx context.Context, tenantID, ruleID string) (*domain.ApprovalRule, error)

	// ListRules retrieves a tenant's rules ordered by priority.
	ListRules(ctx context.Context, tenantID string) ([]domain.ApprovalRule, error)
}

// ApprovalRuleWriter defines write access to approval routing configuration.
type ApprovalRuleWriter interface {
	SaveRule(ctx context.Context, rule domain.ApprovalRule) error
	UpdateRule(ctx context.Context, rule domain.ApprovalRule) error
}

// ApprovalStepReader defines read operations for materialized approval steps.
type ApprovalStepReader interface {
	// FindStepByID retrieves a single step within a tenant.
	FindStepByID(ctx context.Context, tenantID, stepID string) (*domain.ApprovalStep, error)

	// FindStepsByVoucherID retrieves a voucher's steps in step-number order.
	FindStepsByVoucherID(ctx context.Context, tenantID, voucherID string) ([]domain.ApprovalStep, error)

	// ListPendingStepsOlderThan retrieves pending steps created before the
	// cutoff across all tenants, for the scheduler's escalation sweep. Steps
	// already escalated are excluded.
	ListPendingStepsOlderThan(ctx context.Context, cutoff time.Time) ([]domain.ApprovalStep, error)
}

// ApprovalStepWriter defines write operations for materialized approval steps.
type ApprovalStepWriter interface {
	// SubmitWithSteps transitions the voucher from DRAFT to AWAITING_APPROVAL
	// and persists the rule snapshot materialized at submission, together with
	// the submission audit entry, in one transaction. A voucher no longer in
	// DRAFT fails with ErrStateConflict and nothing is written.
	SubmitWithSteps(ctx context.Context, tenantID, voucherID, actorID string, at time.Time, steps []domain.ApprovalStep, audit domain.AuditEntry) error

	// ApproveStep marks a pending step approved with an optimistic status
	// precondition; ErrConflict when the step was already actioned.
	ApproveStep(ctx context.Context, tenantID, stepID, actorID string, at time.Time, comment string, audit domain.AuditEntry) error

	// RejectStep marks the step rejected, cancels remaining pending steps and
	// returns the voucher to draft, all in one transaction.
	RejectStep(ctx context.Context, tenantID, voucherID, stepID, actorID string, at time.Time, comment string, audit domain.AuditEntry) error

	// CancelPendingSteps cancels every pending step of a voucher (voucher cancellation).
	CancelPendingSteps(ctx context.Context, tenantID, voucherID, actorID string, at time.Time) error

	// EscalateStep reassigns a pending step's required role; the step stays pending.
	EscalateStep(ctx context.Context, tenantID, stepID, escalationRole string, at time.Time, audit domain.AuditEntry) error
}

// ApprovalRepositoryFacade combines rule and step repository interfaces.
type ApprovalRepositoryFacade interface {
	ApprovalRuleReader
	ApprovalRuleWriter
	ApprovalStepReader
	ApprovalStepWriter
}
