package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
)

// auditService exposes the append-only audit trail. Most entries are written
// inside repository transactions; this service reads them back and records
// the few standalone ones.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
	tenantSvc portssvc.TenantSvcFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.AuditSvcFacade {
	return &auditService{
		auditRepo: auditRepo,
		tenantSvc: tenantSvc,
	}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) ListAuditTrail(ctx context.Context, tenantID, subjectType, subjectID, userID string) ([]domain.AuditEntry, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	entries, _, err := s.auditRepo.ListBySubject(ctx, tenantID, subjectType, subjectID, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit trail: %w", err)
	}
	return entries, nil
}

func (s *auditService) RecordEntry(ctx context.Context, tenantID, subjectType, subjectID string, action domain.AuditAction, actorID string, detail any, at time.Time) error {
	entry := domain.AuditEntry{
		AuditID:     uuid.NewString(),
		TenantID:    tenantID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Action:      action,
		ActorID:     actorID,
		CreatedAt:   at,
	}
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal audit detail: %w", apperrors.ErrInternal)
		}
		entry.Detail = raw
	}

	if err := s.auditRepo.SaveEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}
