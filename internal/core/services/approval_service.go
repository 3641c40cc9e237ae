package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/middleware"
)

var (
	ErrStepNotActionable = errors.New("approval step has already been actioned")
	ErrStepOutOfOrder    = errors.New("an earlier sequential step is still pending")
	ErrRoleNotHeld       = errors.New("actor does not hold the required approver role")
)

// approvalService drives the approval workflow: actioning materialized steps,
// escalation and the automatic post after the final approval.
type approvalService struct {
	approvalRepo portsrepo.ApprovalRepositoryFacade
	voucherRepo  portsrepo.VoucherRepositoryFacade
	tenantSvc    portssvc.TenantSvcFacade
	poster       portssvc.VoucherPoster
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(approvalRepo portsrepo.ApprovalRepositoryFacade, voucherRepo portsrepo.VoucherRepositoryFacade, tenantSvc portssvc.TenantSvcFacade, poster portssvc.VoucherPoster) portssvc.ApprovalSvcFacade {
	return &approvalService{
		approvalRepo: approvalRepo,
		voucherRepo:  voucherRepo,
		tenantSvc:    tenantSvc,
		poster:       poster,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// ApproveStep records an approval. The optimistic status precondition in the
// repository guarantees that of two approvers acting concurrently on the same
// step exactly one succeeds; the other receives ErrConflict.
//
// When the approval completes the chain, the voucher transitions to APPROVED
// and is posted immediately on the approver's behalf. A failed auto-post
// (e.g. the period closed mid-chain) leaves the voucher APPROVED for a
// manual post; the approval itself stands.
func (s *approvalService) ApproveStep(ctx context.Context, tenantID, voucherID, stepID, actorID, comment string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, actorID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	voucher, step, steps, err := s.loadActionableStep(ctx, tenantID, voucherID, stepID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if step.Mode == domain.Sequential {
		for _, other := range steps {
			if other.StepNumber < step.StepNumber && other.Status == domain.StepPending {
				return nil, fmt.Errorf("step %d of voucher %s: %w", step.StepNumber, voucherID, ErrStepOutOfOrder)
			}
		}
	}

	holds, err := s.tenantSvc.HoldsApproverRole(ctx, actorID, tenantID, step.RequiredRole, now)
	if err != nil {
		return nil, err
	}
	if !holds {
		return nil, fmt.Errorf("role %s: %w: %w", step.RequiredRole, ErrRoleNotHeld, apperrors.ErrForbidden)
	}

	audit := s.stepAudit(tenantID, stepID, domain.AuditStepApproved, actorID, now, comment)
	if err := s.approvalRepo.ApproveStep(ctx, tenantID, stepID, actorID, now, comment, audit); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("step %s of voucher %s: %w: %w", stepID, voucherID, ErrStepNotActionable, err)
		}
		logger.Error("Failed to approve step", slog.String("error", err.Error()), slog.String("step_id", stepID))
		return nil, fmt.Errorf("failed to approve step: %w", err)
	}

	logger.Info("Approval step approved",
		slog.String("voucher_id", voucherID),
		slog.String("step_id", stepID),
		slog.String("actor_id", actorID))

	// Reload the chain to decide whether this approval completed it.
	steps, err = s.approvalRepo.FindStepsByVoucherID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload approval steps: %w", err)
	}
	for _, st := range steps {
		if st.Status != domain.StepApproved {
			voucher.Lines = nil
			return voucher, nil
		}
	}

	// The chain is complete: approve the voucher, then post it. If a
	// concurrent final approval beat us to the transition, it also owns the
	// posting; report the voucher as it stands.
	approveAudit := domain.AuditEntry{
		AuditID:     uuid.NewString(),
		TenantID:    tenantID,
		SubjectType: domain.SubjectVoucher,
		SubjectID:   voucherID,
		Action:      domain.AuditApproved,
		ActorID:     actorID,
		CreatedAt:   now,
	}
	if err := s.voucherRepo.UpdateVoucherStatus(ctx, tenantID, voucherID, domain.StatusAwaitingApproval, domain.StatusApproved, actorID, now, approveAudit); err != nil {
		if errors.Is(err, apperrors.ErrStateConflict) {
			current, findErr := s.voucherRepo.FindVoucherByID(ctx, tenantID, voucherID)
			if findErr == nil {
				return current, nil
			}
		}
		logger.Error("Failed to mark voucher approved after final step", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to approve voucher: %w", err)
	}

	posted, err := s.poster.PostApproved(ctx, tenantID, voucherID, actorID)
	if err != nil {
		logger.Warn("Automatic post after final approval failed, voucher stays approved",
			slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		voucher.Status = domain.StatusApproved
		return voucher, nil
	}

	logger.Info("Voucher posted after final approval", slog.String("voucher_id", voucherID))
	return posted, nil
}

// RejectStep rejects a pending step. The repository cancels the remaining
// pending steps and returns the voucher to DRAFT in the same transaction, so
// a reject can never leave a half-cancelled chain.
func (s *approvalService) RejectStep(ctx context.Context, tenantID, voucherID, stepID, actorID, comment string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, actorID, tenantID, domain.RoleReadOnly); err != nil {
		return err
	}

	_, step, _, err := s.loadActionableStep(ctx, tenantID, voucherID, stepID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	holds, err := s.tenantSvc.HoldsApproverRole(ctx, actorID, tenantID, step.RequiredRole, now)
	if err != nil {
		return err
	}
	if !holds {
		return fmt.Errorf("role %s: %w: %w", step.RequiredRole, ErrRoleNotHeld, apperrors.ErrForbidden)
	}

	audit := s.stepAudit(tenantID, stepID, domain.AuditStepRejected, actorID, now, comment)
	if err := s.approvalRepo.RejectStep(ctx, tenantID, voucherID, stepID, actorID, now, comment, audit); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("step %s of voucher %s: %w: %w", stepID, voucherID, ErrStepNotActionable, err)
		}
		logger.Error("Failed to reject step", slog.String("error", err.Error()), slog.String("step_id", stepID))
		return fmt.Errorf("failed to reject step: %w", err)
	}

	logger.Info("Approval step rejected, voucher returned to draft",
		slog.String("voucher_id", voucherID),
		slog.String("step_id", stepID),
		slog.String("actor_id", actorID))
	return nil
}

// EscalateStep reassigns a pending step to the escalation role. The step
// stays pending; only the role allowed to action it changes.
func (s *approvalService) EscalateStep(ctx context.Context, tenantID, voucherID, stepID, escalationRole, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, actorID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}

	_, step, _, err := s.loadActionableStep(ctx, tenantID, voucherID, stepID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	audit := s.stepAudit(tenantID, stepID, domain.AuditEscalated, actorID, now,
		fmt.Sprintf("escalated from role %s to %s", step.RequiredRole, escalationRole))
	if err := s.approvalRepo.EscalateStep(ctx, tenantID, stepID, escalationRole, now, audit); err != nil {
		logger.Error("Failed to escalate step", slog.String("error", err.Error()), slog.String("step_id", stepID))
		return fmt.Errorf("failed to escalate step: %w", err)
	}

	logger.Info("Approval step escalated",
		slog.String("voucher_id", voucherID),
		slog.String("step_id", stepID),
		slog.String("escalation_role", escalationRole))
	return nil
}

// EscalateOverdue escalates every pending step older than the cutoff the
// caller derives from configuration. Invoked by the scheduler loop, not by a
// user, so there is no per-tenant authorization here.
func (s *approvalService) EscalateOverdue(ctx context.Context, escalationRole string, olderThan time.Duration) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cutoff := time.Now().UTC().Add(-olderThan)
	steps, err := s.approvalRepo.ListPendingStepsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue steps: %w", err)
	}

	escalated := 0
	for _, step := range steps {
		now := time.Now().UTC()
		audit := s.stepAudit(step.TenantID, step.StepID, domain.AuditEscalated, "system", now,
			fmt.Sprintf("escalated from role %s to %s after timeout", step.RequiredRole, escalationRole))
		if err := s.approvalRepo.EscalateStep(ctx, step.TenantID, step.StepID, escalationRole, now, audit); err != nil {
			logger.Error("Failed to escalate overdue step",
				slog.String("error", err.Error()),
				slog.String("step_id", step.StepID),
				slog.String("tenant_id", step.TenantID))
			continue
		}
		escalated++
	}

	if escalated > 0 {
		logger.Info("Escalation sweep complete", slog.Int("escalated", escalated), slog.String("escalation_role", escalationRole))
	}
	return escalated, nil
}

func (s *approvalService) ListSteps(ctx context.Context, tenantID, voucherID, userID string) ([]domain.ApprovalStep, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.voucherRepo.FindVoucherByID(ctx, tenantID, voucherID); err != nil {
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}

	steps, err := s.approvalRepo.FindStepsByVoucherID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval steps: %w", err)
	}
	return steps, nil
}

// loadActionableStep fetches the voucher and step, checking they belong
// together and that the voucher is still in routing.
func (s *approvalService) loadActionableStep(ctx context.Context, tenantID, voucherID, stepID string) (*domain.Voucher, *domain.ApprovalStep, []domain.ApprovalStep, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}
	if voucher.Status != domain.StatusAwaitingApproval {
		return nil, nil, nil, fmt.Errorf("voucher %s is %s: %w", voucherID, voucher.Status, apperrors.ErrStateConflict)
	}

	steps, err := s.approvalRepo.FindStepsByVoucherID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load approval steps: %w", err)
	}

	var step *domain.ApprovalStep
	for i := range steps {
		if steps[i].StepID == stepID {
			step = &steps[i]
			break
		}
	}
	if step == nil {
		return nil, nil, nil, fmt.Errorf("step %s not found on voucher %s: %w", stepID, voucherID, apperrors.ErrNotFound)
	}
	if !step.Actionable() {
		return nil, nil, nil, fmt.Errorf("step %s is %s: %w: %w", stepID, step.Status, ErrStepNotActionable, apperrors.ErrConflict)
	}
	return voucher, step, steps, nil
}

func (s *approvalService) stepAudit(tenantID, stepID string, action domain.AuditAction, actorID string, at time.Time, comment string) domain.AuditEntry {
	entry := domain.AuditEntry{
		AuditID:     uuid.NewString(),
		TenantID:    tenantID,
		SubjectType: domain.SubjectApprovalStep,
		SubjectID:   stepID,
		Action:      action,
		ActorID:     actorID,
		CreatedAt:   at,
	}
	if comment != "" {
		detail, err := json.Marshal(map[string]string{"comment": comment})
		if err == nil {
			entry.Detail = detail
		}
	}
	return entry
}
