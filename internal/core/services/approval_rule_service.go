package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
)

// approvalRuleService manages the rule catalogue. Rule changes only affect
// future submissions: in-flight vouchers keep the step snapshot taken when
// they were submitted.
type approvalRuleService struct {
	approvalRepo portsrepo.ApprovalRepositoryFacade
	docTypeRepo  portsrepo.DocumentTypeRepositoryFacade
	tenantSvc    portssvc.TenantSvcFacade
}

// NewApprovalRuleService creates a new ApprovalRuleService.
func NewApprovalRuleService(approvalRepo portsrepo.ApprovalRepositoryFacade, docTypeRepo portsrepo.DocumentTypeRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.ApprovalRuleSvcFacade {
	return &approvalRuleService{
		approvalRepo: approvalRepo,
		docTypeRepo:  docTypeRepo,
		tenantSvc:    tenantSvc,
	}
}

var _ portssvc.ApprovalRuleSvcFacade = (*approvalRuleService)(nil)

func (s *approvalRuleService) CreateRule(ctx context.Context, tenantID string, req dto.CreateApprovalRuleRequest, creatorUserID string) (*domain.ApprovalRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, creatorUserID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, req.DocTypeID); err != nil {
		return nil, fmt.Errorf("failed to find document type %s: %w", req.DocTypeID, err)
	}
	if req.MinAmount != nil && req.MinAmount.IsNegative() {
		return nil, fmt.Errorf("%w: rule amount threshold cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rule := domain.ApprovalRule{
		RuleID:    uuid.NewString(),
		TenantID:  tenantID,
		DocTypeID: req.DocTypeID,
		MinAmount: req.MinAmount,
		Mode:      req.Mode,
		Roles:     req.Roles,
		Priority:  req.Priority,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.approvalRepo.SaveRule(ctx, rule); err != nil {
		logger.Error("Failed to save approval rule", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save approval rule: %w", err)
	}

	logger.Info("Approval rule created", slog.String("rule_id", rule.RuleID), slog.String("doc_type_id", rule.DocTypeID))
	return &rule, nil
}

func (s *approvalRuleService) GetRuleByID(ctx context.Context, tenantID, ruleID, userID string) (*domain.ApprovalRule, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rule, err := s.approvalRepo.FindRuleByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find approval rule %s: %w", ruleID, err)
	}
	return rule, nil
}

func (s *approvalRuleService) ListRules(ctx context.Context, tenantID, userID string) ([]domain.ApprovalRule, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rules, err := s.approvalRepo.ListRules(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval rules: %w", err)
	}
	return rules, nil
}

func (s *approvalRuleService) UpdateRule(ctx context.Context, tenantID, ruleID string, req dto.UpdateApprovalRuleRequest, userID string) (*domain.ApprovalRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	rule, err := s.approvalRepo.FindRuleByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find approval rule %s: %w", ruleID, err)
	}

	if req.MinAmount != nil {
		if req.MinAmount.IsNegative() {
			return nil, fmt.Errorf("%w: rule amount threshold cannot be negative", apperrors.ErrValidation)
		}
		rule.MinAmount = req.MinAmount
	}
	if req.Mode != nil {
		rule.Mode = *req.Mode
	}
	if req.Roles != nil {
		rule.Roles = req.Roles
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.LastUpdatedAt = time.Now().UTC()
	rule.LastUpdatedBy = userID

	if err := s.approvalRepo.UpdateRule(ctx, *rule); err != nil {
		logger.Error("Failed to update approval rule", slog.String("error", err.Error()), slog.String("rule_id", ruleID))
		return nil, fmt.Errorf("failed to update approval rule: %w", err)
	}
	return rule, nil
}
