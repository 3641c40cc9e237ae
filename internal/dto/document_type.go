package dto

import (
	"github.com/finpost/finpost_app/internal/core/domain"
)

// CreateDocumentTypeRequest defines data for creating a document type.
type CreateDocumentTypeRequest struct {
	Code                 string               `json:"code" binding:"required"`
	Name                 string               `json:"name" binding:"required"`
	NumberPrefix         string               `json:"numberPrefix" binding:"required"`
	RequiresApproval     bool                 `json:"requiresApproval"`
	RestrictAccountTypes []domain.AccountType `json:"restrictAccountTypes" binding:"omitempty,dive,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

// UpdateDocumentTypeRequest defines data for updating a document type.
type UpdateDocumentTypeRequest struct {
	Name                 *string              `json:"name,omitempty"`
	RequiresApproval     *bool                `json:"requiresApproval,omitempty"`
	RestrictAccountTypes []domain.AccountType `json:"restrictAccountTypes" binding:"omitempty,dive,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	IsActive             *bool                `json:"isActive,omitempty"`
}

// DocumentTypeResponse defines data returned for a document type.
type DocumentTypeResponse struct {
	DocTypeID            string               `json:"docTypeID"`
	TenantID             string               `json:"tenantID"`
	Code                 string               `json:"code"`
	Name                 string               `json:"name"`
	NumberPrefix         string               `json:"numberPrefix"`
	RequiresApproval     bool                 `json:"requiresApproval"`
	RestrictAccountTypes []domain.AccountType `json:"restrictAccountTypes,omitempty"`
	IsActive             bool                 `json:"isActive"`
}

// ToDocumentTypeResponse converts domain.DocumentType to DTO.
func ToDocumentTypeResponse(d *domain.DocumentType) DocumentTypeResponse {
	return DocumentTypeResponse{
		DocTypeID:            d.DocTypeID,
		TenantID:             d.TenantID,
		Code:                 d.Code,
		Name:                 d.Name,
		NumberPrefix:         d.NumberPrefix,
		RequiresApproval:     d.RequiresApproval,
		RestrictAccountTypes: d.RestrictAccountTypes,
		IsActive:             d.IsActive,
	}
}

// ListDocumentTypesResponse wraps a list of document types.
type ListDocumentTypesResponse struct {
	DocumentTypes []DocumentTypeResponse `json:"documentTypes"`
}

// ToListDocumentTypesResponse converts a slice of domain.DocumentType to DTO.
func ToListDocumentTypesResponse(ds []domain.DocumentType) ListDocumentTypesResponse {
	list := make([]DocumentTypeResponse, len(ds))
	for i, d := range ds {
		list[i] = ToDocumentTypeResponse(&d)
	}
	return ListDocumentTypesResponse{DocumentTypes: list}
}
