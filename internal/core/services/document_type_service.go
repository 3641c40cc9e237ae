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

// documentTypeService manages document types: numbering prefix, approval
// requirement and account type restrictions.
type documentTypeService struct {
	docTypeRepo portsrepo.DocumentTypeRepositoryFacade
	tenantSvc   portssvc.TenantSvcFacade
}

// NewDocumentTypeService creates a new DocumentTypeService.
func NewDocumentTypeService(docTypeRepo portsrepo.DocumentTypeRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.DocumentTypeSvcFacade {
	return &documentTypeService{
		docTypeRepo: docTypeRepo,
		tenantSvc:   tenantSvc,
	}
}

var _ portssvc.DocumentTypeSvcFacade = (*documentTypeService)(nil)

func (s *documentTypeService) CreateDocumentType(ctx context.Context, tenantID string, req dto.CreateDocumentTypeRequest, creatorUserID string) (*domain.DocumentType, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, creatorUserID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	for _, t := range req.RestrictAccountTypes {
		if !domain.ValidAccountType(t) {
			return nil, fmt.Errorf("%w: invalid account type %s in restriction list", apperrors.ErrValidation, t)
		}
	}

	now := time.Now().UTC()
	docType := domain.DocumentType{
		DocTypeID:            uuid.NewString(),
		TenantID:             tenantID,
		Code:                 req.Code,
		Name:                 req.Name,
		NumberPrefix:         req.NumberPrefix,
		RequiresApproval:     req.RequiresApproval,
		RestrictAccountTypes: req.RestrictAccountTypes,
		IsActive:             true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.docTypeRepo.SaveDocumentType(ctx, docType); err != nil {
		logger.Error("Failed to save document type", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save document type: %w", err)
	}

	logger.Info("Document type created", slog.String("doc_type_id", docType.DocTypeID), slog.String("code", docType.Code))
	return &docType, nil
}

func (s *documentTypeService) GetDocumentTypeByID(ctx context.Context, tenantID, docTypeID, userID string) (*domain.DocumentType, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, docTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document type %s: %w", docTypeID, err)
	}
	return docType, nil
}

func (s *documentTypeService) ListDocumentTypes(ctx context.Context, tenantID, userID string) ([]domain.DocumentType, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	docTypes, err := s.docTypeRepo.ListDocumentTypes(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document types: %w", err)
	}
	return docTypes, nil
}

// UpdateDocumentType changes mutable settings. Code and number prefix are
// immutable so issued voucher numbers keep their meaning.
func (s *documentTypeService) UpdateDocumentType(ctx context.Context, tenantID, docTypeID string, req dto.UpdateDocumentTypeRequest, userID string) (*domain.DocumentType, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	docType, err := s.docTypeRepo.FindDocumentTypeByID(ctx, tenantID, docTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document type %s: %w", docTypeID, err)
	}

	if req.Name != nil {
		docType.Name = *req.Name
	}
	if req.RequiresApproval != nil {
		docType.RequiresApproval = *req.RequiresApproval
	}
	if req.RestrictAccountTypes != nil {
		for _, t := range req.RestrictAccountTypes {
			if !domain.ValidAccountType(t) {
				return nil, fmt.Errorf("%w: invalid account type %s in restriction list", apperrors.ErrValidation, t)
			}
		}
		docType.RestrictAccountTypes = req.RestrictAccountTypes
	}
	if req.IsActive != nil {
		docType.IsActive = *req.IsActive
	}
	docType.LastUpdatedAt = time.Now().UTC()
	docType.LastUpdatedBy = userID

	if err := s.docTypeRepo.UpdateDocumentType(ctx, *docType); err != nil {
		logger.Error("Failed to update document type", slog.String("error", err.Error()), slog.String("doc_type_id", docTypeID))
		return nil, fmt.Errorf("failed to update document type: %w", err)
	}
	return docType, nil
}
