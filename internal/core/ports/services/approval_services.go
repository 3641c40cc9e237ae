package services

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/dto"
)

// ApprovalSvcFacade drives the approval workflow for submitted vouchers.
type ApprovalSvcFacade interface {
	// ApproveStep records an approval on a pending step. For sequential
	// routing the step must be the lowest-numbered pending one. When the
	// approval completes the chain the voucher is posted automatically and
	// the returned voucher reflects that.
	ApproveStep(ctx context.Context, tenantID, voucherID, stepID, actorID, comment string) (*domain.Voucher, error)

	// RejectStep rejects a pending step, cancels the remaining pending
	// steps and returns the voucher to DRAFT, all in one transaction.
	RejectStep(ctx context.Context, tenantID, voucherID, stepID, actorID, comment string) error

	// EscalateStep reassigns a pending step to the escalation role. The
	// step stays pending; the original role can no longer action it.
	EscalateStep(ctx context.Context, tenantID, voucherID, stepID, escalationRole, actorID string) error

	// EscalateOverdue escalates every step pending longer than olderThan.
	// Used by the background escalation sweep.
	EscalateOverdue(ctx context.Context, escalationRole string, olderThan time.Duration) (int, error)

	// ListSteps returns the approval chain of a voucher in step order.
	ListSteps(ctx context.Context, tenantID, voucherID, userID string) ([]domain.ApprovalStep, error)
}

// ApprovalRuleSvcFacade manages the approval rule catalogue.
type ApprovalRuleSvcFacade interface {
	CreateRule(ctx context.Context, tenantID string, req dto.CreateApprovalRuleRequest, creatorUserID string) (*domain.ApprovalRule, error)
	GetRuleByID(ctx context.Context, tenantID, ruleID, userID string) (*domain.ApprovalRule, error)
	ListRules(ctx context.Context, tenantID, userID string) ([]domain.ApprovalRule, error)
	UpdateRule(ctx context.Context, tenantID, ruleID string, req dto.UpdateApprovalRuleRequest, userID string) (*domain.ApprovalRule, error)
}
