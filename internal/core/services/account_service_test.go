package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/core/services"
	"github.com/finpost/finpost_app/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTenantSvc   *MockTenantService

	service portssvc.AccountSvcFacade

	tenantID string
	userID   string
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockTenantSvc = new(MockTenantService)

	s.service = services.NewAccountService(s.mockAccountRepo, s.mockTenantSvc)

	s.tenantID = uuid.NewString()
	s.userID = uuid.NewString()
}

func (s *AccountServiceTestSuite) expectReadAuthz() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleReadOnly).Return(nil)
}

func (s *AccountServiceTestSuite) TestCreateAccount_InvalidTypeRejected() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleAdmin).Return(nil)

	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: "GOODWILL"}
	_, err := s.service.CreateAccount(context.Background(), s.tenantID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockAccountRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCreateAccount_Success() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleAdmin).Return(nil)
	s.mockAccountRepo.On("SaveAccount", mock.Anything, mock.MatchedBy(func(account domain.Account) bool {
		return account.TenantID == s.tenantID && account.IsActive && account.Balance.IsZero() &&
			account.CreatedBy == s.userID
	})).Return(nil)

	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset}
	account, err := s.service.CreateAccount(context.Background(), s.tenantID, req, s.userID)

	s.Require().NoError(err)
	s.Equal("1000", account.Code)
	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestListAccounts_ForwardsPagination() {
	s.expectReadAuthz()
	s.mockAccountRepo.On("ListAccounts", mock.Anything, s.tenantID, 50, 100).Return([]domain.Account{}, nil)

	_, err := s.service.ListAccounts(context.Background(), s.tenantID, s.userID, 50, 100)

	s.Require().NoError(err)
	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestListAccounts_ClampsLimitAndOffset() {
	s.expectReadAuthz()
	// Zero limit falls back to the default page size, an oversized limit is
	// capped and a negative offset resets to the first page.
	s.mockAccountRepo.On("ListAccounts", mock.Anything, s.tenantID, 20, 0).Return([]domain.Account{}, nil).Once()
	s.mockAccountRepo.On("ListAccounts", mock.Anything, s.tenantID, 100, 0).Return([]domain.Account{}, nil).Once()

	_, err := s.service.ListAccounts(context.Background(), s.tenantID, s.userID, 0, -5)
	s.Require().NoError(err)

	_, err = s.service.ListAccounts(context.Background(), s.tenantID, s.userID, 500, 0)
	s.Require().NoError(err)

	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestUpdateAccount_TypeStaysImmutable() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleAdmin).Return(nil)
	accountID := uuid.NewString()
	existing := &domain.Account{
		AccountID:   accountID,
		TenantID:    s.tenantID,
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		IsActive:    true,
	}
	s.mockAccountRepo.On("FindAccountByID", mock.Anything, s.tenantID, accountID).Return(existing, nil)
	newName := "Petty Cash"
	s.mockAccountRepo.On("UpdateAccount", mock.Anything, mock.MatchedBy(func(account domain.Account) bool {
		return account.Name == newName && account.AccountType == domain.Asset
	})).Return(nil)

	account, err := s.service.UpdateAccount(context.Background(), s.tenantID, accountID, dto.UpdateAccountRequest{Name: &newName}, s.userID)

	s.Require().NoError(err)
	s.Equal(newName, account.Name)
	s.mockAccountRepo.AssertExpectations(s.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
