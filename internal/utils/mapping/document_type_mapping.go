package mapping

import (
	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/models"
)

// ToModelDocumentType converts a domain DocumentType to a model DocumentType.
func ToModelDocumentType(d domain.DocumentType) models.DocumentType {
	restrict := make([]string, len(d.RestrictAccountTypes))
	for i, t := range d.RestrictAccountTypes {
		restrict[i] = string(t)
	}
	return models.DocumentType{
		DocTypeID:            d.DocTypeID,
		TenantID:             d.TenantID,
		Code:                 d.Code,
		Name:                 d.Name,
		NumberPrefix:         d.NumberPrefix,
		RequiresApproval:     d.RequiresApproval,
		RestrictAccountTypes: restrict,
		IsActive:             d.IsActive,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocumentType converts a model DocumentType to a domain DocumentType.
func ToDomainDocumentType(m models.DocumentType) domain.DocumentType {
	restrict := make([]domain.AccountType, len(m.RestrictAccountTypes))
	for i, t := range m.RestrictAccountTypes {
		restrict[i] = domain.AccountType(t)
	}
	return domain.DocumentType{
		DocTypeID:            m.DocTypeID,
		TenantID:             m.TenantID,
		Code:                 m.Code,
		Name:                 m.Name,
		NumberPrefix:         m.NumberPrefix,
		RequiresApproval:     m.RequiresApproval,
		RestrictAccountTypes: restrict,
		IsActive:             m.IsActive,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
