package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/core/validation"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
	"github.com/finpost/finpost_app/internal/utils/numbering"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// voucherService is the posting engine. It owns the voucher state machine:
// drafts, submission into approval routing, posting with number assignment,
// reversal and cancellation. All ledger effects happen here or nowhere.
type voucherService struct {
	voucherRepo  portsrepo.VoucherRepositoryWithTx
	approvalRepo portsrepo.ApprovalRepositoryFacade
	periodRepo   portsrepo.PeriodRepositoryFacade
	docTypeRepo  portsrepo.DocumentTypeRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	tenantSvc    portssvc.TenantSvcFacade
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(
	voucherRepo portsrepo.VoucherRepositoryWithTx,
	approvalRepo portsrepo.ApprovalRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	docTypeRepo portsrepo.DocumentTypeRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	tenantSvc portssvc.TenantSvcFacade,
) portssvc.VoucherSvcFacade {
	return &voucherService{
		voucherRepo:  voucherRepo,
		approvalRepo: approvalRepo,
		periodRepo:   periodRepo,
		docTypeRepo:  docTypeRepo,
		accountRepo:  accountRepo,
		tenantSvc:    tenantSvc,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// --- Draft operations ---

// CreateDraft persists a new draft voucher. Validation here is advisory: the
// accumulated result travels back with the draft, but only a missing or
// inactive document type blocks creation, because the number sequence and
// approval routing both hang off the document type.
func (s *voucherService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, validation.Result, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, creatorUserID, tenantID, domain.RoleMember); err != nil {
		return nil, validation.Result{}, err
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, req.DocTypeID)
	if err != nil {
		return nil, validation.Result{}, fmt.Errorf("failed to find document type %s: %w", req.DocTypeID, err)
	}
	if !docType.IsActive {
		return nil, validation.Result{}, fmt.Errorf("%w: document type %s is inactive", apperrors.ErrValidation, docType.Code)
	}

	now := time.Now().UTC()
	voucherID := uuid.NewString()
	lines := s.buildLines(voucherID, tenantID, req.Lines, creatorUserID, now)

	voucher := domain.Voucher{
		VoucherID:   voucherID,
		TenantID:    tenantID,
		DocTypeID:   req.DocTypeID,
		VoucherDate: req.VoucherDate.UTC(),
		Reference:   req.Reference,
		Description: req.Description,
		Status:      domain.StatusDraft,
		Amount:      totalDebits(lines),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	result, period, err := s.validate(ctx, &voucher, lines, docType)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if period != nil {
		voucher.PeriodID = period.PeriodID
	}

	audit := s.voucherAudit(tenantID, voucherID, domain.AuditCreated, creatorUserID, now)
	if err := s.voucherRepo.SaveVoucher(ctx, voucher, lines, audit); err != nil {
		logger.Error("Failed to save voucher draft", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, validation.Result{}, fmt.Errorf("failed to save voucher: %w", err)
	}

	logger.Info("Voucher draft created",
		slog.String("voucher_id", voucherID),
		slog.String("tenant_id", tenantID),
		slog.Int("validation_issues", len(result.Errors)))

	voucher.Lines = lines
	return &voucher, result, nil
}

// UpdateDraft replaces a draft's header fields and, when provided, its full
// line set. Only drafts are editable.
func (s *voucherService) UpdateDraft(ctx context.Context, tenantID, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, validation.Result, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleMember); err != nil {
		return nil, validation.Result{}, err
	}

	voucher, lines, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if !voucher.Editable() {
		return nil, validation.Result{}, fmt.Errorf("voucher %s is %s: %w", voucherID, voucher.Status, apperrors.ErrStateConflict)
	}

	now := time.Now().UTC()
	if req.VoucherDate != nil {
		voucher.VoucherDate = req.VoucherDate.UTC()
	}
	if req.Reference != nil {
		voucher.Reference = *req.Reference
	}
	if req.Description != nil {
		voucher.Description = *req.Description
	}
	if req.Lines != nil {
		lines = s.buildLines(voucherID, tenantID, req.Lines, userID, now)
	}
	voucher.Amount = totalDebits(lines)
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = userID

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, voucher.DocTypeID)
	if err != nil {
		return nil, validation.Result{}, fmt.Errorf("failed to find document type %s: %w", voucher.DocTypeID, err)
	}

	result, period, err := s.validate(ctx, voucher, lines, docType)
	if err != nil {
		return nil, validation.Result{}, err
	}
	voucher.PeriodID = ""
	if period != nil {
		voucher.PeriodID = period.PeriodID
	}

	audit := s.voucherAudit(tenantID, voucherID, domain.AuditUpdated, userID, now)
	if err := s.voucherRepo.UpdateDraft(ctx, *voucher, lines, audit); err != nil {
		logger.Error("Failed to update voucher draft", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, validation.Result{}, fmt.Errorf("failed to update voucher: %w", err)
	}

	voucher.Lines = lines
	return voucher, result, nil
}

// --- Submission and posting ---

// SubmitForApproval moves a draft forward. Strict validation gates the
// transition: every accumulated failure is returned and the draft stays
// untouched. A valid draft either has its approval chain materialized from
// the matching rule, or posts directly when no approval applies.
func (s *voucherService) SubmitForApproval(ctx context.Context, tenantID, voucherID, userID string) (*domain.Voucher, validation.Result, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleMember); err != nil {
		return nil, validation.Result{}, err
	}

	voucher, lines, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if voucher.Status != domain.StatusDraft {
		return nil, validation.Result{}, fmt.Errorf("voucher %s is %s: %w", voucherID, voucher.Status, apperrors.ErrStateConflict)
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, voucher.DocTypeID)
	if err != nil {
		return nil, validation.Result{}, fmt.Errorf("failed to find document type %s: %w", voucher.DocTypeID, err)
	}

	result, period, err := s.validate(ctx, voucher, lines, docType)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if !result.OK() {
		return nil, result, fmt.Errorf("voucher %s failed validation: %w", voucherID, apperrors.ErrValidation)
	}

	rule, err := s.matchRule(ctx, tenantID, docType, voucher.Amount)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if rule == nil {
		// No approval chain applies. Post directly.
		posted, err := s.post(ctx, voucher, lines, docType, period, domain.StatusDraft, userID)
		if err != nil {
			return nil, validation.Result{}, err
		}
		return posted, result, nil
	}

	now := time.Now().UTC()
	steps := materializeSteps(rule, voucherID, tenantID, userID, now)
	submitAudit := s.voucherAudit(tenantID, voucherID, domain.AuditSubmitted, userID, now)
	if err := s.approvalRepo.SubmitWithSteps(ctx, tenantID, voucherID, userID, now, steps, submitAudit); err != nil {
		logger.Error("Failed to submit voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, validation.Result{}, fmt.Errorf("failed to submit voucher: %w", err)
	}

	logger.Info("Voucher submitted for approval",
		slog.String("voucher_id", voucherID),
		slog.String("rule_id", rule.RuleID),
		slog.Int("steps", len(steps)))

	voucher.Status = domain.StatusAwaitingApproval
	voucher.Lines = lines
	return voucher, result, nil
}

// Post commits a voucher to the ledger: an APPROVED voucher whose automatic
// post after final approval failed (e.g. the period closed while the chain
// was running), or a valid DRAFT to which no approval chain applies.
func (s *voucherService) Post(ctx context.Context, tenantID, voucherID, userID string) (*domain.Voucher, validation.Result, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleMember); err != nil {
		return nil, validation.Result{}, err
	}

	voucher, lines, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if voucher.Status != domain.StatusApproved && voucher.Status != domain.StatusDraft {
		return nil, validation.Result{}, fmt.Errorf("voucher %s is %s: %w", voucherID, voucher.Status, apperrors.ErrStateConflict)
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, voucher.DocTypeID)
	if err != nil {
		return nil, validation.Result{}, fmt.Errorf("failed to find document type %s: %w", voucher.DocTypeID, err)
	}

	result, period, err := s.validate(ctx, voucher, lines, docType)
	if err != nil {
		return nil, validation.Result{}, err
	}
	if !result.OK() {
		return nil, result, fmt.Errorf("voucher %s failed validation: %w", voucherID, apperrors.ErrValidation)
	}

	if voucher.Status == domain.StatusDraft {
		rule, err := s.matchRule(ctx, tenantID, docType, voucher.Amount)
		if err != nil {
			return nil, validation.Result{}, err
		}
		if rule != nil {
			return nil, validation.Result{}, fmt.Errorf("voucher %s requires approval before posting: %w", voucherID, apperrors.ErrStateConflict)
		}
	}

	posted, err := s.post(ctx, voucher, lines, docType, period, voucher.Status, userID)
	if err != nil {
		return nil, validation.Result{}, err
	}
	return posted, result, nil
}

// PostApproved implements the narrow posting trigger used by the approval
// workflow after the final step approves.
func (s *voucherService) PostApproved(ctx context.Context, tenantID, voucherID, actorID string) (*domain.Voucher, error) {
	voucher, lines, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.Status != domain.StatusApproved {
		return nil, fmt.Errorf("voucher %s is %s: %w", voucherID, voucher.Status, apperrors.ErrStateConflict)
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, voucher.DocTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document type %s: %w", voucher.DocTypeID, err)
	}

	result, period, err := s.validate(ctx, voucher, lines, docType)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		// The world changed while the chain ran (period closed, account
		// deactivated). The voucher stays APPROVED for a manual Post later.
		return nil, fmt.Errorf("voucher %s failed re-validation at posting: %w", voucherID, apperrors.ErrValidation)
	}

	return s.post(ctx, voucher, lines, docType, period, domain.StatusApproved, actorID)
}

// post runs the atomic posting transaction. Validation has already passed, so
// period is non-nil and every line's account resolves. A reversal voucher
// takes the dedicated path that also flips its original.
func (s *voucherService) post(ctx context.Context, voucher *domain.Voucher, lines []domain.VoucherLine, docType *domain.DocumentType, period *domain.FiscalPeriod, from domain.VoucherStatus, actorID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if voucher.ReversalOfID != nil {
		return s.postReversal(ctx, voucher, lines, docType, period, from, actorID)
	}

	balanceChanges, err := s.balanceChanges(ctx, voucher.TenantID, lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	voucher.PeriodID = period.PeriodID
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = actorID

	audit := s.voucherAudit(voucher.TenantID, voucher.VoucherID, domain.AuditPosted, actorID, now)
	number, err := s.voucherRepo.PostVoucher(ctx, *voucher, from, period.Key(), balanceChanges, audit)
	if err != nil {
		if errors.Is(err, apperrors.ErrStateConflict) {
			return nil, fmt.Errorf("voucher %s was concurrently transitioned: %w", voucher.VoucherID, err)
		}
		logger.Error("Failed to post voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucher.VoucherID))
		return nil, fmt.Errorf("failed to post voucher: %w", err)
	}

	voucher.Status = domain.StatusPosted
	voucher.VoucherNumber = &number
	voucher.PostedAt = &now
	voucher.Lines = lines

	logger.Info("Voucher posted",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("voucher_number", numbering.Format(docType.NumberPrefix, period.FiscalYear, number)),
		slog.String("period", period.Key()))
	return voucher, nil
}

// Reverse creates the reversing voucher, linked both ways, and runs it
// through the same pipeline as any other voucher: when an approval rule
// matches it enters the approval chain, otherwise it posts immediately. The
// original flips to REVERSED only when the reversal actually posts, and is
// never modified beyond its status and back-link.
func (s *voucherService) Reverse(ctx context.Context, tenantID, voucherID, reason, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleMember); err != nil {
		return nil, err
	}

	original, originalLines, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.StatusPosted {
		return nil, fmt.Errorf("voucher %s is %s, only posted vouchers can be reversed: %w", voucherID, original.Status, apperrors.ErrStateConflict)
	}
	if original.ReversedByID != nil {
		return nil, fmt.Errorf("voucher %s is already reversed by %s: %w", voucherID, *original.ReversedByID, apperrors.ErrStateConflict)
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, original.DocTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document type %s: %w", original.DocTypeID, err)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	reversalLines := make([]domain.VoucherLine, len(originalLines))
	for i, line := range originalLines {
		swapped := line.Swapped()
		swapped.LineID = uuid.NewString()
		swapped.VoucherID = reversalID
		swapped.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		}
		reversalLines[i] = swapped
	}

	description := fmt.Sprintf("Reversal of voucher %s", voucherID)
	if reason != "" {
		description = fmt.Sprintf("%s: %s", description, reason)
	}
	reversal := domain.Voucher{
		VoucherID:    reversalID,
		TenantID:     tenantID,
		DocTypeID:    original.DocTypeID,
		VoucherDate:  now,
		Reference:    original.Reference,
		Description:  description,
		Status:       domain.StatusDraft,
		ReversalOfID: &original.VoucherID,
		Amount:       original.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// The reversal is dated today so it lands in the currently open period
	// even when the original's period has since closed.
	result, period, err := s.validate(ctx, &reversal, reversalLines, docType)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("reversal of voucher %s failed validation: %w", voucherID, apperrors.ErrValidation)
	}
	reversal.PeriodID = period.PeriodID

	createdAudit := s.voucherAudit(tenantID, reversalID, domain.AuditCreated, userID, now)
	if err := s.voucherRepo.SaveVoucher(ctx, reversal, reversalLines, createdAudit); err != nil {
		logger.Error("Failed to save reversal voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to save reversal voucher: %w", err)
	}

	rule, err := s.matchRule(ctx, tenantID, docType, reversal.Amount)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		// The reversal is approval-gated like any other voucher of this
		// document type; the original stays POSTED until the chain completes
		// and the reversal posts.
		steps := materializeSteps(rule, reversalID, tenantID, userID, now)
		submitAudit := s.voucherAudit(tenantID, reversalID, domain.AuditSubmitted, userID, now)
		if err := s.approvalRepo.SubmitWithSteps(ctx, tenantID, reversalID, userID, now, steps, submitAudit); err != nil {
			logger.Error("Failed to submit reversal voucher", slog.String("error", err.Error()), slog.String("voucher_id", reversalID))
			return nil, fmt.Errorf("failed to submit reversal voucher: %w", err)
		}

		logger.Info("Reversal voucher submitted for approval",
			slog.String("voucher_id", voucherID),
			slog.String("reversal_id", reversalID),
			slog.String("rule_id", rule.RuleID))
		reversal.Status = domain.StatusAwaitingApproval
		reversal.Lines = reversalLines
		return &reversal, nil
	}

	return s.postReversal(ctx, &reversal, reversalLines, docType, period, domain.StatusDraft, userID)
}

// postReversal commits a reversal's posting: the reversal flips to POSTED and
// its original to REVERSED in one repository transaction. The original is
// re-checked here because the approval chain may have run for days.
func (s *voucherService) postReversal(ctx context.Context, reversal *domain.Voucher, lines []domain.VoucherLine, docType *domain.DocumentType, period *domain.FiscalPeriod, from domain.VoucherStatus, actorID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.voucherRepo.FindVoucherByID(ctx, reversal.TenantID, *reversal.ReversalOfID)
	if err != nil {
		return nil, fmt.Errorf("failed to find reversed voucher %s: %w", *reversal.ReversalOfID, err)
	}
	if original.Status != domain.StatusPosted {
		return nil, fmt.Errorf("voucher %s is %s, only posted vouchers can be reversed: %w", original.VoucherID, original.Status, apperrors.ErrStateConflict)
	}
	if original.ReversedByID != nil {
		return nil, fmt.Errorf("voucher %s is already reversed by %s: %w", original.VoucherID, *original.ReversedByID, apperrors.ErrStateConflict)
	}

	balanceChanges, err := s.balanceChanges(ctx, reversal.TenantID, lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversal.PeriodID = period.PeriodID
	reversal.LastUpdatedAt = now
	reversal.LastUpdatedBy = actorID

	audits := []domain.AuditEntry{
		s.voucherAudit(reversal.TenantID, reversal.VoucherID, domain.AuditPosted, actorID, now),
		s.voucherAudit(reversal.TenantID, original.VoucherID, domain.AuditReversed, actorID, now),
	}
	number, err := s.voucherRepo.ReverseVoucher(ctx, *original, *reversal, from, period.Key(), balanceChanges, audits)
	if err != nil {
		logger.Error("Failed to reverse voucher", slog.String("error", err.Error()), slog.String("voucher_id", original.VoucherID))
		return nil, fmt.Errorf("failed to reverse voucher: %w", err)
	}

	reversal.Status = domain.StatusPosted
	reversal.VoucherNumber = &number
	reversal.PostedAt = &now
	reversal.Lines = lines

	logger.Info("Voucher reversed",
		slog.String("voucher_id", original.VoucherID),
		slog.String("reversal_id", reversal.VoucherID),
		slog.String("reversal_number", numbering.Format(docType.NumberPrefix, period.FiscalYear, number)))
	return reversal, nil
}

// Cancel abandons a voucher that has not reached the ledger.
func (s *voucherService) Cancel(ctx context.Context, tenantID, voucherID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleMember); err != nil {
		return err
	}

	voucher, _, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return err
	}
	if voucher.Status != domain.StatusDraft && voucher.Status != domain.StatusAwaitingApproval {
		return fmt.Errorf("voucher %s is %s: %w", voucherID, voucher.Status, apperrors.ErrStateConflict)
	}

	now := time.Now().UTC()
	audit := s.voucherAudit(tenantID, voucherID, domain.AuditCancelled, userID, now)
	if err := s.voucherRepo.UpdateVoucherStatus(ctx, tenantID, voucherID, voucher.Status, domain.StatusCancelled, userID, now, audit); err != nil {
		logger.Error("Failed to cancel voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return fmt.Errorf("failed to cancel voucher: %w", err)
	}

	if voucher.Status == domain.StatusAwaitingApproval {
		if err := s.approvalRepo.CancelPendingSteps(ctx, tenantID, voucherID, userID, now); err != nil {
			logger.Error("Failed to cancel pending approval steps", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
			return fmt.Errorf("failed to cancel pending approval steps: %w", err)
		}
	}

	logger.Info("Voucher cancelled", slog.String("voucher_id", voucherID), slog.String("tenant_id", tenantID))
	return nil
}

// --- Reads ---

func (s *voucherService) GetVoucherByID(ctx context.Context, tenantID, voucherID, requestingUserID string) (*domain.Voucher, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	voucher, lines, err := s.loadVoucher(ctx, tenantID, voucherID)
	if err != nil {
		return nil, err
	}
	voucher.Lines = lines
	return voucher, nil
}

func (s *voucherService) ListVouchers(ctx context.Context, tenantID, userID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := clampLimit(params.Limit)
	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	vouchers, newToken, err := s.voucherRepo.ListVouchersByTenant(ctx, tenantID, limit, nextToken, params.Status, params.IncludeReversals)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}

	return &dto.ListVouchersResponse{
		Vouchers:  dto.ToVoucherResponses(vouchers),
		NextToken: newToken,
	}, nil
}

func (s *voucherService) ListAccountStatement(ctx context.Context, tenantID, accountID, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	// Ensure the account exists in this tenant before paging its lines.
	if _, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	limit := clampLimit(params.Limit)
	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	lines, newToken, err := s.voucherRepo.ListPostedLinesByAccount(ctx, tenantID, accountID, limit, nextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list account statement: %w", err)
	}

	return &dto.ListLinesResponse{
		Lines:     dto.ToVoucherLineResponses(lines),
		NextToken: newToken,
	}, nil
}

// --- Helpers ---

func (s *voucherService) loadVoucher(ctx context.Context, tenantID, voucherID string) (*domain.Voucher, []domain.VoucherLine, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}
	lines, err := s.voucherRepo.FindLinesByVoucherID(ctx, tenantID, voucherID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lines for voucher %s: %w", voucherID, err)
	}
	return voucher, lines, nil
}

func (s *voucherService) buildLines(voucherID, tenantID string, reqLines []dto.CreateVoucherLineRequest, userID string, now time.Time) []domain.VoucherLine {
	lines := make([]domain.VoucherLine, len(reqLines))
	for i, lr := range reqLines {
		lines[i] = domain.VoucherLine{
			LineID:      uuid.NewString(),
			VoucherID:   voucherID,
			TenantID:    tenantID,
			LineNumber:  i + 1,
			AccountID:   lr.AccountID,
			Debit:       lr.Debit,
			Credit:      lr.Credit,
			Description: lr.Description,
			CostCenter:  lr.CostCenter,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	return lines
}

// validate assembles the validation input and runs the pure engine. It also
// returns the period resolved from the voucher date so callers can reuse it.
func (s *voucherService) validate(ctx context.Context, voucher *domain.Voucher, lines []domain.VoucherLine, docType *domain.DocumentType) (validation.Result, *domain.FiscalPeriod, error) {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, voucher.TenantID, accountIDs)
	if err != nil {
		return validation.Result{}, nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	period, err := s.periodRepo.FindPeriodByDate(ctx, voucher.TenantID, voucher.VoucherDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return validation.Result{}, nil, fmt.Errorf("failed to resolve fiscal period: %w", err)
	}

	result := validation.Validate(validation.Input{
		Voucher:  *voucher,
		Lines:    lines,
		Accounts: accounts,
		Period:   period,
		DocType:  docType,
	})
	return result, period, nil
}

// balanceChanges nets each account's signed delta from the lines.
func (s *voucherService) balanceChanges(ctx context.Context, tenantID string, lines []domain.VoucherLine) (map[string]decimal.Decimal, error) {
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for balance changes: %w", err)
	}

	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account %s not found computing balance changes: %w", line.AccountID, apperrors.ErrInternal)
		}
		delta := line.SignedAmount(account.AccountType)
		if current, ok := changes[line.AccountID]; ok {
			changes[line.AccountID] = current.Add(delta)
		} else {
			changes[line.AccountID] = delta
		}
	}
	return changes, nil
}

// matchRule resolves the approval rule snapshot source. Nil means no approval
// applies: either the document type never requires it, or no active rule
// matches the amount.
func (s *voucherService) matchRule(ctx context.Context, tenantID string, docType *domain.DocumentType, amount decimal.Decimal) (*domain.ApprovalRule, error) {
	if !docType.RequiresApproval {
		return nil, nil
	}
	rule, err := s.approvalRepo.FindMatchingRule(ctx, tenantID, docType.DocTypeID, amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find matching approval rule: %w", err)
	}
	return rule, nil
}

// materializeSteps snapshots the rule into concrete steps. Later rule edits
// never touch these rows.
func materializeSteps(rule *domain.ApprovalRule, voucherID, tenantID, creatorUserID string, now time.Time) []domain.ApprovalStep {
	steps := make([]domain.ApprovalStep, len(rule.Roles))
	for i, role := range rule.Roles {
		steps[i] = domain.ApprovalStep{
			StepID:       uuid.NewString(),
			VoucherID:    voucherID,
			TenantID:     tenantID,
			StepNumber:   i + 1,
			RequiredRole: role,
			Mode:         rule.Mode,
			Status:       domain.StepPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}
	return steps
}

func (s *voucherService) voucherAudit(tenantID, voucherID string, action domain.AuditAction, actorID string, at time.Time) domain.AuditEntry {
	return domain.AuditEntry{
		AuditID:     uuid.NewString(),
		TenantID:    tenantID,
		SubjectType: domain.SubjectVoucher,
		SubjectID:   voucherID,
		Action:      action,
		ActorID:     actorID,
		CreatedAt:   at,
	}
}

func totalDebits(lines []domain.VoucherLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Debit)
	}
	return total
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
