package mapping

import (
	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/models"
)

// ToModelApprovalRule converts a domain ApprovalRule to a model ApprovalRule.
func ToModelApprovalRule(d domain.ApprovalRule) models.ApprovalRule {
	return models.ApprovalRule{
		RuleID:      d.RuleID,
		TenantID:    d.TenantID,
		DocTypeID:   d.DocTypeID,
		MinAmount:   d.MinAmount,
		Mode:        string(d.Mode),
		Roles:       d.Roles,
		Priority:    d.Priority,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApprovalRule converts a model ApprovalRule to a domain ApprovalRule.
func ToDomainApprovalRule(m models.ApprovalRule) domain.ApprovalRule {
	return domain.ApprovalRule{
		RuleID:      m.RuleID,
		TenantID:    m.TenantID,
		DocTypeID:   m.DocTypeID,
		MinAmount:   m.MinAmount,
		Mode:        domain.ApprovalMode(m.Mode),
		Roles:       m.Roles,
		Priority:    m.Priority,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelApprovalStep converts a domain ApprovalStep to a model ApprovalStep.
func ToModelApprovalStep(d domain.ApprovalStep) models.ApprovalStep {
	return models.ApprovalStep{
		StepID:       d.StepID,
		VoucherID:    d.VoucherID,
		TenantID:     d.TenantID,
		StepNumber:   d.StepNumber,
		RequiredRole: d.RequiredRole,
		Mode:         string(d.Mode),
		Status:       string(d.Status),
		ActedBy:      d.ActedBy,
		ActedAt:      d.ActedAt,
		Comment:      d.Comment,
		EscalatedAt:  d.EscalatedAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApprovalStep converts a model ApprovalStep to a domain ApprovalStep.
func ToDomainApprovalStep(m models.ApprovalStep) domain.ApprovalStep {
	return domain.ApprovalStep{
		StepID:       m.StepID,
		VoucherID:    m.VoucherID,
		TenantID:     m.TenantID,
		StepNumber:   m.StepNumber,
		RequiredRole: m.RequiredRole,
		Mode:         domain.ApprovalMode(m.Mode),
		Status:       domain.ApprovalStepStatus(m.Status),
		ActedBy:      m.ActedBy,
		ActedAt:      m.ActedAt,
		Comment:      m.Comment,
		EscalatedAt:  m.EscalatedAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainApprovalStepSlice converts a slice of model steps to domain steps.
func ToDomainApprovalStepSlice(ms []models.ApprovalStep) []domain.ApprovalStep {
	steps := make([]domain.ApprovalStep, len(ms))
	for i, m := range ms {
		steps[i] = ToDomainApprovalStep(m)
	}
	return steps
}
