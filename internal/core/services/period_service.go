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

// periodService manages fiscal periods. Closing a period blocks posting into
// it; the close itself is audited.
type periodService struct {
	periodRepo portsrepo.PeriodRepositoryFacade
	tenantSvc  portssvc.TenantSvcFacade
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo: periodRepo,
		tenantSvc:  tenantSvc,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.FiscalPeriod, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, creatorUserID, tenantID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: period end date must be after start date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	period := domain.FiscalPeriod{
		PeriodID:     uuid.NewString(),
		TenantID:     tenantID,
		FiscalYear:   req.FiscalYear,
		PeriodNumber: req.PeriodNumber,
		StartDate:    req.StartDate.UTC(),
		EndDate:      req.EndDate.UTC(),
		IsClosed:     false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		logger.Error("Failed to save fiscal period", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save fiscal period: %w", err)
	}

	logger.Info("Fiscal period created", slog.String("period_id", period.PeriodID), slog.String("period", period.Key()))
	return &period, nil
}

func (s *periodService) GetPeriodByID(ctx context.Context, tenantID, periodID, userID string) (*domain.FiscalPeriod, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find fiscal period %s: %w", periodID, err)
	}
	return period, nil
}

// ListPeriods returns the tenant's periods, optionally limited to one fiscal
// year (zero means all years).
func (s *periodService) ListPeriods(ctx context.Context, tenantID, userID string, fiscalYear int) ([]domain.FiscalPeriod, error) {
	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	periods, err := s.periodRepo.ListPeriods(ctx, tenantID, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list fiscal periods: %w", err)
	}
	return periods, nil
}

// ClosePeriod blocks posting into the period. Vouchers already posted stay
// untouched; drafts dated inside it will fail strict validation from now on.
func (s *periodService) ClosePeriod(ctx context.Context, tenantID, periodID, userID string) error {
	return s.setClosed(ctx, tenantID, periodID, userID, true, domain.AuditPeriodClosed)
}

// ReopenPeriod lifts a close again, e.g. for late adjustments.
func (s *periodService) ReopenPeriod(ctx context.Context, tenantID, periodID, userID string) error {
	return s.setClosed(ctx, tenantID, periodID, userID, false, domain.AuditPeriodReopened)
}

func (s *periodService) setClosed(ctx context.Context, tenantID, periodID, userID string, closed bool, action domain.AuditAction) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.tenantSvc.AuthorizeUserAction(ctx, userID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}

	now := time.Now().UTC()
	audit := domain.AuditEntry{
		AuditID:     uuid.NewString(),
		TenantID:    tenantID,
		SubjectType: domain.SubjectFiscalPeriod,
		SubjectID:   periodID,
		Action:      action,
		ActorID:     userID,
		CreatedAt:   now,
	}

	if err := s.periodRepo.SetPeriodClosed(ctx, tenantID, periodID, closed, userID, now, audit); err != nil {
		logger.Error("Failed to change fiscal period state", slog.String("error", err.Error()), slog.String("period_id", periodID), slog.Bool("closed", closed))
		return fmt.Errorf("failed to change fiscal period state: %w", err)
	}

	logger.Info("Fiscal period state changed", slog.String("period_id", periodID), slog.Bool("closed", closed))
	return nil
}
