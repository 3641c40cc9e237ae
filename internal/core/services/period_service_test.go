package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/core/services"
	"github.com/finpost/finpost_app/internal/dto"
)

type PeriodServiceTestSuite struct {
	suite.Suite
	mockPeriodRepo *MockPeriodRepository
	mockTenantSvc  *MockTenantService

	service portssvc.PeriodSvcFacade

	tenantID string
	userID   string
}

func (s *PeriodServiceTestSuite) SetupTest() {
	s.mockPeriodRepo = new(MockPeriodRepository)
	s.mockTenantSvc = new(MockTenantService)

	s.service = services.NewPeriodService(s.mockPeriodRepo, s.mockTenantSvc)

	s.tenantID = uuid.NewString()
	s.userID = uuid.NewString()
}

func (s *PeriodServiceTestSuite) expectAdminAuthz() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleAdmin).Return(nil)
}

func (s *PeriodServiceTestSuite) TestCreatePeriod_SetsAuditFields() {
	s.expectAdminAuthz()
	s.mockPeriodRepo.On("SavePeriod", mock.Anything, mock.MatchedBy(func(period domain.FiscalPeriod) bool {
		return period.TenantID == s.tenantID &&
			period.CreatedBy == s.userID && period.LastUpdatedBy == s.userID &&
			!period.CreatedAt.IsZero() && !period.IsClosed
	})).Return(nil)

	req := dto.CreatePeriodRequest{
		FiscalYear:   2026,
		PeriodNumber: 4,
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}
	period, err := s.service.CreatePeriod(context.Background(), s.tenantID, req, s.userID)

	s.Require().NoError(err)
	s.Equal("2026-04", period.Key())
	s.mockPeriodRepo.AssertExpectations(s.T())
}

func (s *PeriodServiceTestSuite) TestCreatePeriod_EndBeforeStartRejected() {
	s.expectAdminAuthz()

	req := dto.CreatePeriodRequest{
		FiscalYear:   2026,
		PeriodNumber: 4,
		StartDate:    time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := s.service.CreatePeriod(context.Background(), s.tenantID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockPeriodRepo.AssertNotCalled(s.T(), "SavePeriod", mock.Anything, mock.Anything)
}

func (s *PeriodServiceTestSuite) TestListPeriods_ForwardsFiscalYearFilter() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleReadOnly).Return(nil)
	s.mockPeriodRepo.On("ListPeriods", mock.Anything, s.tenantID, 2026).Return([]domain.FiscalPeriod{}, nil).Once()
	// A zero fiscal year means all years.
	s.mockPeriodRepo.On("ListPeriods", mock.Anything, s.tenantID, 0).Return([]domain.FiscalPeriod{}, nil).Once()

	_, err := s.service.ListPeriods(context.Background(), s.tenantID, s.userID, 2026)
	s.Require().NoError(err)

	_, err = s.service.ListPeriods(context.Background(), s.tenantID, s.userID, 0)
	s.Require().NoError(err)

	s.mockPeriodRepo.AssertExpectations(s.T())
}

func (s *PeriodServiceTestSuite) TestClosePeriod_WritesAuditEntry() {
	s.expectAdminAuthz()
	periodID := uuid.NewString()
	s.mockPeriodRepo.On("SetPeriodClosed", mock.Anything, s.tenantID, periodID, true, s.userID, mock.Anything,
		mock.MatchedBy(func(audit domain.AuditEntry) bool {
			return audit.Action == domain.AuditPeriodClosed && audit.SubjectID == periodID
		})).Return(nil)

	err := s.service.ClosePeriod(context.Background(), s.tenantID, periodID, s.userID)

	s.Require().NoError(err)
	s.mockPeriodRepo.AssertExpectations(s.T())
}

func (s *PeriodServiceTestSuite) TestReopenPeriod_WritesAuditEntry() {
	s.expectAdminAuthz()
	periodID := uuid.NewString()
	s.mockPeriodRepo.On("SetPeriodClosed", mock.Anything, s.tenantID, periodID, false, s.userID, mock.Anything,
		mock.MatchedBy(func(audit domain.AuditEntry) bool {
			return audit.Action == domain.AuditPeriodReopened
		})).Return(nil)

	err := s.service.ReopenPeriod(context.Background(), s.tenantID, periodID, s.userID)

	s.Require().NoError(err)
	s.mockPeriodRepo.AssertExpectations(s.T())
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
