package mapping

import (
	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/models"
)

// ToModelFiscalPeriod converts a domain FiscalPeriod to a model FiscalPeriod.
func ToModelFiscalPeriod(d domain.FiscalPeriod) models.FiscalPeriod {
	return models.FiscalPeriod{
		PeriodID:     d.PeriodID,
		TenantID:     d.TenantID,
		FiscalYear:   d.FiscalYear,
		PeriodNumber: d.PeriodNumber,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		IsClosed:     d.IsClosed,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalPeriod converts a model FiscalPeriod to a domain FiscalPeriod.
func ToDomainFiscalPeriod(m models.FiscalPeriod) domain.FiscalPeriod {
	return domain.FiscalPeriod{
		PeriodID:     m.PeriodID,
		TenantID:     m.TenantID,
		FiscalYear:   m.FiscalYear,
		PeriodNumber: m.PeriodNumber,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		IsClosed:     m.IsClosed,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAuditEntry converts a domain AuditEntry to a model AuditEntry.
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		AuditID:     d.AuditID,
		TenantID:    d.TenantID,
		SubjectType: d.SubjectType,
		SubjectID:   d.SubjectID,
		Action:      string(d.Action),
		ActorID:     d.ActorID,
		Detail:      d.Detail,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainAuditEntry converts a model AuditEntry to a domain AuditEntry.
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		AuditID:     m.AuditID,
		TenantID:    m.TenantID,
		SubjectType: m.SubjectType,
		SubjectID:   m.SubjectID,
		Action:      domain.AuditAction(m.Action),
		ActorID:     m.ActorID,
		Detail:      m.Detail,
		CreatedAt:   m.CreatedAt,
	}
}
