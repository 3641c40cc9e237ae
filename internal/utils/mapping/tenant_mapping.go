package mapping

import (
	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/models"
)

// ToModelTenant converts a domain Tenant to a model Tenant.
func ToModelTenant(d domain.Tenant) models.Tenant {
	return models.Tenant{
		TenantID:    d.TenantID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTenant converts a model Tenant to a domain Tenant.
func ToDomainTenant(m models.Tenant) domain.Tenant {
	return domain.Tenant{
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDelegation converts a model RoleDelegation to the domain type.
func ToDomainDelegation(m models.RoleDelegation) domain.RoleDelegation {
	return domain.RoleDelegation{
		DelegationID: m.DelegationID,
		TenantID:     m.TenantID,
		Role:         m.Role,
		FromUserID:   m.FromUserID,
		ToUserID:     m.ToUserID,
		StartsAt:     m.StartsAt,
		EndsAt:       m.EndsAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
