package dto

import (
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Approval rule DTOs ---

// CreateApprovalRuleRequest defines data for creating an approval rule.
type CreateApprovalRuleRequest struct {
	DocTypeID string              `json:"docTypeID" binding:"required"`
	MinAmount *decimal.Decimal    `json:"minAmount,omitempty"`
	Mode      domain.ApprovalMode `json:"mode" binding:"required,oneof=SEQUENTIAL PARALLEL"`
	Roles     []string            `json:"roles" binding:"required,min=1,dive,required"`
	Priority  int                 `json:"priority"`
}

// UpdateApprovalRuleRequest defines data for updating an approval rule.
// Changes never affect vouchers already in routing: their chain was
// materialized at submission.
type UpdateApprovalRuleRequest struct {
	MinAmount *decimal.Decimal     `json:"minAmount,omitempty"`
	Mode      *domain.ApprovalMode `json:"mode,omitempty" binding:"omitempty,oneof=SEQUENTIAL PARALLEL"`
	Roles     []string             `json:"roles" binding:"omitempty,min=1,dive,required"`
	Priority  *int                 `json:"priority,omitempty"`
	IsActive  *bool                `json:"isActive,omitempty"`
}

// ApprovalRuleResponse defines data returned for an approval rule.
type ApprovalRuleResponse struct {
	RuleID    string              `json:"ruleID"`
	TenantID  string              `json:"tenantID"`
	DocTypeID string              `json:"docTypeID"`
	MinAmount *decimal.Decimal    `json:"minAmount,omitempty"`
	Mode      domain.ApprovalMode `json:"mode"`
	Roles     []string            `json:"roles"`
	Priority  int                 `json:"priority"`
	IsActive  bool                `json:"isActive"`
}

// ToApprovalRuleResponse converts domain.ApprovalRule to DTO.
func ToApprovalRuleResponse(r *domain.ApprovalRule) ApprovalRuleResponse {
	return ApprovalRuleResponse{
		RuleID:    r.RuleID,
		TenantID:  r.TenantID,
		DocTypeID: r.DocTypeID,
		MinAmount: r.MinAmount,
		Mode:      r.Mode,
		Roles:     r.Roles,
		Priority:  r.Priority,
		IsActive:  r.IsActive,
	}
}

// ListApprovalRulesResponse wraps a list of approval rules.
type ListApprovalRulesResponse struct {
	Rules []ApprovalRuleResponse `json:"rules"`
}

// ToListApprovalRulesResponse converts a slice of domain.ApprovalRule to DTO.
func ToListApprovalRulesResponse(rs []domain.ApprovalRule) ListApprovalRulesResponse {
	list := make([]ApprovalRuleResponse, len(rs))
	for i, r := range rs {
		list[i] = ToApprovalRuleResponse(&r)
	}
	return ListApprovalRulesResponse{Rules: list}
}

// --- Approval step DTOs ---

// ActionStepRequest carries the optional comment on an approve/reject action.
type ActionStepRequest struct {
	Comment string `json:"comment"`
}

// EscalateStepRequest defines the role a step escalates to.
type EscalateStepRequest struct {
	EscalationRole string `json:"escalationRole" binding:"required"`
}

// ApprovalStepResponse defines data returned for an approval step.
type ApprovalStepResponse struct {
	StepID       string                    `json:"stepID"`
	VoucherID    string                    `json:"voucherID"`
	StepNumber   int                       `json:"stepNumber"`
	RequiredRole string                    `json:"requiredRole"`
	Mode         domain.ApprovalMode       `json:"mode"`
	Status       domain.ApprovalStepStatus `json:"status"`
	ActedBy      *string                   `json:"actedBy,omitempty"`
	ActedAt      *time.Time                `json:"actedAt,omitempty"`
	Comment      string                    `json:"comment,omitempty"`
	EscalatedAt  *time.Time                `json:"escalatedAt,omitempty"`
}

// ToApprovalStepResponse converts domain.ApprovalStep to DTO.
func ToApprovalStepResponse(s *domain.ApprovalStep) ApprovalStepResponse {
	return ApprovalStepResponse{
		StepID:       s.StepID,
		VoucherID:    s.VoucherID,
		StepNumber:   s.StepNumber,
		RequiredRole: s.RequiredRole,
		Mode:         s.Mode,
		Status:       s.Status,
		ActedBy:      s.ActedBy,
		ActedAt:      s.ActedAt,
		Comment:      s.Comment,
		EscalatedAt:  s.EscalatedAt,
	}
}

// ListApprovalStepsResponse wraps a voucher's approval chain.
type ListApprovalStepsResponse struct {
	Steps []ApprovalStepResponse `json:"steps"`
}

// ToListApprovalStepsResponse converts a slice of domain.ApprovalStep to DTO.
func ToListApprovalStepsResponse(steps []domain.ApprovalStep) ListApprovalStepsResponse {
	list := make([]ApprovalStepResponse, len(steps))
	for i, s := range steps {
		list[i] = ToApprovalStepResponse(&s)
	}
	return ListApprovalStepsResponse{Steps: list}
}
