package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/core/services"
	"github.com/finpost/finpost_app/internal/core/validation"
	"github.com/finpost/finpost_app/internal/dto"
)

type VoucherServiceTestSuite struct {
	suite.Suite
	mockVoucherRepo  *MockVoucherRepository
	mockApprovalRepo *MockApprovalRepository
	mockPeriodRepo   *MockPeriodRepository
	mockDocTypeRepo  *MockDocumentTypeRepository
	mockAccountRepo  *MockAccountRepository
	mockTenantSvc    *MockTenantService

	service portssvc.VoucherSvcFacade

	tenantID  string
	userID    string
	docTypeID string
	periodID  string
	voucherID string

	cashAccount    domain.Account
	revenueAccount domain.Account
	docType        domain.DocumentType
	period         domain.FiscalPeriod
}

func (s *VoucherServiceTestSuite) SetupTest() {
	s.mockVoucherRepo = new(MockVoucherRepository)
	s.mockApprovalRepo = new(MockApprovalRepository)
	s.mockPeriodRepo = new(MockPeriodRepository)
	s.mockDocTypeRepo = new(MockDocumentTypeRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockTenantSvc = new(MockTenantService)

	s.service = services.NewVoucherService(
		s.mockVoucherRepo,
		s.mockApprovalRepo,
		s.mockPeriodRepo,
		s.mockDocTypeRepo,
		s.mockAccountRepo,
		s.mockTenantSvc,
	)

	s.tenantID = uuid.NewString()
	s.userID = uuid.NewString()
	s.docTypeID = uuid.NewString()
	s.periodID = uuid.NewString()
	s.voucherID = uuid.NewString()

	s.cashAccount = domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    s.tenantID,
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		IsActive:    true,
	}
	s.revenueAccount = domain.Account{
		AccountID:   uuid.NewString(),
		TenantID:    s.tenantID,
		Code:        "4000",
		Name:        "Sales Revenue",
		AccountType: domain.Revenue,
		IsActive:    true,
	}
	s.docType = domain.DocumentType{
		DocTypeID:        s.docTypeID,
		TenantID:         s.tenantID,
		Code:             "JV",
		Name:             "Journal Voucher",
		NumberPrefix:     "JV",
		RequiresApproval: true,
		IsActive:         true,
	}
	s.period = domain.FiscalPeriod{
		PeriodID:     s.periodID,
		TenantID:     s.tenantID,
		FiscalYear:   2026,
		PeriodNumber: 4,
		StartDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		IsClosed:     false,
	}
}

func (s *VoucherServiceTestSuite) accountsByID() map[string]domain.Account {
	return map[string]domain.Account{
		s.cashAccount.AccountID:    s.cashAccount,
		s.revenueAccount.AccountID: s.revenueAccount,
	}
}

func (s *VoucherServiceTestSuite) balancedLines(amount string) []domain.VoucherLine {
	amt := decimal.RequireFromString(amount)
	return []domain.VoucherLine{
		{
			LineID:     uuid.NewString(),
			VoucherID:  s.voucherID,
			TenantID:   s.tenantID,
			LineNumber: 1,
			AccountID:  s.cashAccount.AccountID,
			Debit:      amt,
		},
		{
			LineID:     uuid.NewString(),
			VoucherID:  s.voucherID,
			TenantID:   s.tenantID,
			LineNumber: 2,
			AccountID:  s.revenueAccount.AccountID,
			Credit:     amt,
		},
	}
}

func (s *VoucherServiceTestSuite) draftVoucher(amount string) *domain.Voucher {
	return &domain.Voucher{
		VoucherID:   s.voucherID,
		TenantID:    s.tenantID,
		DocTypeID:   s.docTypeID,
		PeriodID:    s.periodID,
		VoucherDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Status:      domain.StatusDraft,
		Amount:      decimal.RequireFromString(amount),
	}
}

func (s *VoucherServiceTestSuite) expectMemberAuthz() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleMember).Return(nil)
}

func (s *VoucherServiceTestSuite) expectValidationFetches() {
	s.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, s.tenantID, mock.Anything).Return(s.accountsByID(), nil)
	s.mockPeriodRepo.On("FindPeriodByDate", mock.Anything, s.tenantID, mock.Anything).Return(&s.period, nil)
}

// --- CreateDraft ---

func (s *VoucherServiceTestSuite) TestCreateDraft_Success() {
	s.expectMemberAuthz()
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()
	s.mockVoucherRepo.On("SaveVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"), mock.Anything, mock.Anything).Return(nil)

	req := dto.CreateVoucherRequest{
		DocTypeID:   s.docTypeID,
		VoucherDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Description: "April sales",
		Lines: []dto.CreateVoucherLineRequest{
			{AccountID: s.cashAccount.AccountID, Debit: decimal.RequireFromString("250.00")},
			{AccountID: s.revenueAccount.AccountID, Credit: decimal.RequireFromString("250.00")},
		},
	}

	voucher, result, err := s.service.CreateDraft(context.Background(), s.tenantID, req, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(voucher)
	s.True(result.OK())
	s.Equal(domain.StatusDraft, voucher.Status)
	s.Equal(s.periodID, voucher.PeriodID)
	s.True(voucher.Amount.Equal(decimal.RequireFromString("250.00")))
	s.Len(voucher.Lines, 2)
	s.mockVoucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestCreateDraft_InactiveDocumentTypeRejected() {
	s.expectMemberAuthz()
	inactive := s.docType
	inactive.IsActive = false
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&inactive, nil)

	req := dto.CreateVoucherRequest{
		DocTypeID:   s.docTypeID,
		VoucherDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Lines: []dto.CreateVoucherLineRequest{
			{AccountID: s.cashAccount.AccountID, Debit: decimal.RequireFromString("10.00")},
			{AccountID: s.revenueAccount.AccountID, Credit: decimal.RequireFromString("10.00")},
		},
	}

	voucher, _, err := s.service.CreateDraft(context.Background(), s.tenantID, req, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(voucher)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "SaveVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateDraft_UnbalancedDraftStillSaved() {
	s.expectMemberAuthz()
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()
	s.mockVoucherRepo.On("SaveVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"), mock.Anything, mock.Anything).Return(nil)

	req := dto.CreateVoucherRequest{
		DocTypeID:   s.docTypeID,
		VoucherDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Lines: []dto.CreateVoucherLineRequest{
			{AccountID: s.cashAccount.AccountID, Debit: decimal.RequireFromString("100.00")},
			{AccountID: s.revenueAccount.AccountID, Credit: decimal.RequireFromString("90.00")},
		},
	}

	voucher, result, err := s.service.CreateDraft(context.Background(), s.tenantID, req, s.userID)

	s.Require().NoError(err)
	s.Require().NotNil(voucher)
	s.False(result.OK())
	s.True(result.Has(validation.CodeUnbalanced))
	s.mockVoucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestCreateDraft_AuthorizationDenied() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.userID, s.tenantID, domain.RoleMember).Return(apperrors.ErrForbidden)

	req := dto.CreateVoucherRequest{
		DocTypeID:   s.docTypeID,
		VoucherDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Lines: []dto.CreateVoucherLineRequest{
			{AccountID: s.cashAccount.AccountID, Debit: decimal.RequireFromString("10.00")},
			{AccountID: s.revenueAccount.AccountID, Credit: decimal.RequireFromString("10.00")},
		},
	}

	_, _, err := s.service.CreateDraft(context.Background(), s.tenantID, req, s.userID)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockDocTypeRepo.AssertNotCalled(s.T(), "FindDocumentTypeByID", mock.Anything, mock.Anything, mock.Anything)
}

// --- UpdateDraft ---

func (s *VoucherServiceTestSuite) TestUpdateDraft_NonDraftRejected() {
	s.expectMemberAuthz()
	posted := s.draftVoucher("100.00")
	posted.Status = domain.StatusPosted
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(posted, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)

	_, _, err := s.service.UpdateDraft(context.Background(), s.tenantID, s.voucherID, dto.UpdateVoucherRequest{}, s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "UpdateDraft", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestUpdateDraft_ReplacesLines() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()
	s.mockVoucherRepo.On("UpdateDraft", mock.Anything, mock.AnythingOfType("domain.Voucher"), mock.Anything, mock.Anything).Return(nil)

	req := dto.UpdateVoucherRequest{
		Lines: []dto.CreateVoucherLineRequest{
			{AccountID: s.cashAccount.AccountID, Debit: decimal.RequireFromString("75.00")},
			{AccountID: s.revenueAccount.AccountID, Credit: decimal.RequireFromString("75.00")},
		},
	}

	voucher, result, err := s.service.UpdateDraft(context.Background(), s.tenantID, s.voucherID, req, s.userID)

	s.Require().NoError(err)
	s.True(result.OK())
	s.True(voucher.Amount.Equal(decimal.RequireFromString("75.00")))
	s.Len(voucher.Lines, 2)
	s.mockVoucherRepo.AssertExpectations(s.T())
}

// --- SubmitForApproval ---

func (s *VoucherServiceTestSuite) TestSubmitForApproval_ValidationFailureBlocksSubmission() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	unbalanced := s.balancedLines("100.00")
	unbalanced[1].Credit = decimal.RequireFromString("90.00")
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(unbalanced, nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	voucher, result, err := s.service.SubmitForApproval(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(voucher)
	s.True(result.Has(validation.CodeUnbalanced))
	s.mockVoucherRepo.AssertNotCalled(s.T(), "UpdateVoucherStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestSubmitForApproval_MaterializesRuleSnapshot() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	rule := &domain.ApprovalRule{
		RuleID:    uuid.NewString(),
		TenantID:  s.tenantID,
		DocTypeID: s.docTypeID,
		Mode:      domain.Sequential,
		Roles:     []string{"SUPERVISOR", "CONTROLLER"},
		IsActive:  true,
	}
	s.mockApprovalRepo.On("FindMatchingRule", mock.Anything, s.tenantID, s.docTypeID, mock.Anything).Return(rule, nil)
	s.mockApprovalRepo.On("SubmitWithSteps", mock.Anything, s.tenantID, s.voucherID, s.userID, mock.Anything,
		mock.MatchedBy(func(steps []domain.ApprovalStep) bool {
			if len(steps) != 2 {
				return false
			}
			return steps[0].StepNumber == 1 && steps[0].RequiredRole == "SUPERVISOR" &&
				steps[1].StepNumber == 2 && steps[1].RequiredRole == "CONTROLLER" &&
				steps[0].Mode == domain.Sequential &&
				steps[0].Status == domain.StepPending && steps[1].Status == domain.StepPending
		}), mock.Anything).Return(nil)

	voucher, result, err := s.service.SubmitForApproval(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.True(result.OK())
	s.Equal(domain.StatusAwaitingApproval, voucher.Status)
	s.mockApprovalRepo.AssertExpectations(s.T())
	s.mockVoucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestSubmitForApproval_NoMatchingRulePostsDirectly() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()
	s.mockApprovalRepo.On("FindMatchingRule", mock.Anything, s.tenantID, s.docTypeID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.mockVoucherRepo.On("PostVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"),
		domain.StatusDraft, "2026-04", mock.Anything, mock.Anything).Return(int64(7), nil)

	voucher, result, err := s.service.SubmitForApproval(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.True(result.OK())
	s.Equal(domain.StatusPosted, voucher.Status)
	s.Require().NotNil(voucher.VoucherNumber)
	s.Equal(int64(7), *voucher.VoucherNumber)
	s.mockApprovalRepo.AssertNotCalled(s.T(), "SubmitWithSteps",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestSubmitForApproval_ApprovalNotRequiredPostsDirectly() {
	s.expectMemberAuthz()
	noApproval := s.docType
	noApproval.RequiresApproval = false
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&noApproval, nil)
	s.expectValidationFetches()
	s.mockVoucherRepo.On("PostVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"),
		domain.StatusDraft, "2026-04", mock.Anything, mock.Anything).Return(int64(1), nil)

	voucher, _, err := s.service.SubmitForApproval(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, voucher.Status)
	s.mockApprovalRepo.AssertNotCalled(s.T(), "FindMatchingRule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestSubmitForApproval_SubmitFailureLeavesDraftUntouched() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	rule := &domain.ApprovalRule{
		RuleID:   uuid.NewString(),
		TenantID: s.tenantID,
		Mode:     domain.Sequential,
		Roles:    []string{"SUPERVISOR"},
		IsActive: true,
	}
	s.mockApprovalRepo.On("FindMatchingRule", mock.Anything, s.tenantID, s.docTypeID, mock.Anything).Return(rule, nil)
	s.mockApprovalRepo.On("SubmitWithSteps", mock.Anything, s.tenantID, s.voucherID, s.userID,
		mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrInternal)

	voucher, _, err := s.service.SubmitForApproval(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInternal)
	s.Nil(voucher)
	// The status flip and the step snapshot are one repository transaction;
	// the service never transitions the voucher separately.
	s.mockVoucherRepo.AssertNotCalled(s.T(), "UpdateVoucherStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

// --- Post ---

func (s *VoucherServiceTestSuite) TestPost_AwaitingApprovalRejected() {
	s.expectMemberAuthz()
	awaiting := s.draftVoucher("100.00")
	awaiting.Status = domain.StatusAwaitingApproval
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(awaiting, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)

	_, _, err := s.service.Post(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "PostVoucher",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestPost_DraftWithoutApprovalRulePosts() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()
	s.mockApprovalRepo.On("FindMatchingRule", mock.Anything, s.tenantID, s.docTypeID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	s.mockVoucherRepo.On("PostVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"),
		domain.StatusDraft, "2026-04", mock.Anything, mock.Anything).Return(int64(9), nil)

	voucher, result, err := s.service.Post(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.True(result.OK())
	s.Equal(domain.StatusPosted, voucher.Status)
	s.Require().NotNil(voucher.VoucherNumber)
	s.Equal(int64(9), *voucher.VoucherNumber)
	s.mockVoucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestPost_DraftRequiringApprovalRejected() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	rule := &domain.ApprovalRule{
		RuleID:   uuid.NewString(),
		TenantID: s.tenantID,
		Mode:     domain.Sequential,
		Roles:    []string{"SUPERVISOR"},
		IsActive: true,
	}
	s.mockApprovalRepo.On("FindMatchingRule", mock.Anything, s.tenantID, s.docTypeID, mock.Anything).Return(rule, nil)

	_, _, err := s.service.Post(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "PostVoucher",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestPost_AppliesSignedBalanceChanges() {
	s.expectMemberAuthz()
	approved := s.draftVoucher("100.00")
	approved.Status = domain.StatusApproved
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(approved, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	hundred := decimal.RequireFromString("100.00")
	s.mockVoucherRepo.On("PostVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"),
		domain.StatusApproved, "2026-04",
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			// Debiting cash raises the asset balance; crediting revenue raises
			// the revenue balance.
			return len(changes) == 2 &&
				changes[s.cashAccount.AccountID].Equal(hundred) &&
				changes[s.revenueAccount.AccountID].Equal(hundred)
		}), mock.Anything).Return(int64(42), nil)

	voucher, result, err := s.service.Post(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.True(result.OK())
	s.Equal(domain.StatusPosted, voucher.Status)
	s.Require().NotNil(voucher.VoucherNumber)
	s.Equal(int64(42), *voucher.VoucherNumber)
	s.NotNil(voucher.PostedAt)
	s.mockVoucherRepo.AssertExpectations(s.T())
}

// --- Reverse ---

func (s *VoucherServiceTestSuite) TestReverse_OnlyPostedVouchers() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)

	_, err := s.service.Reverse(context.Background(), s.tenantID, s.voucherID, "oops", s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
}

func (s *VoucherServiceTestSuite) TestReverse_AlreadyReversedRejected() {
	s.expectMemberAuthz()
	posted := s.draftVoucher("100.00")
	posted.Status = domain.StatusPosted
	reversedBy := uuid.NewString()
	posted.ReversedByID = &reversedBy
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(posted, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)

	_, err := s.service.Reverse(context.Background(), s.tenantID, s.voucherID, "", s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "ReverseVoucher",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestReverse_PostsSwappedLinesLinkedToOriginal() {
	s.expectMemberAuthz()
	noApproval := s.docType
	noApproval.RequiresApproval = false
	posted := s.draftVoucher("100.00")
	posted.Status = domain.StatusPosted
	number := int64(42)
	posted.VoucherNumber = &number
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(posted, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&noApproval, nil)

	// The reversal is dated today, so resolve it into a currently open period.
	current := s.period
	current.StartDate = time.Now().UTC().AddDate(0, -1, 0)
	current.EndDate = time.Now().UTC().AddDate(0, 1, 0)
	s.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, s.tenantID, mock.Anything).Return(s.accountsByID(), nil)
	s.mockPeriodRepo.On("FindPeriodByDate", mock.Anything, s.tenantID, mock.Anything).Return(&current, nil)

	hundred := decimal.RequireFromString("100.00")
	s.mockVoucherRepo.On("SaveVoucher", mock.Anything,
		mock.MatchedBy(func(reversal domain.Voucher) bool {
			return reversal.Status == domain.StatusDraft &&
				reversal.ReversalOfID != nil && *reversal.ReversalOfID == s.voucherID
		}),
		mock.MatchedBy(func(lines []domain.VoucherLine) bool {
			// Sides swapped relative to the original lines.
			return len(lines) == 2 &&
				lines[0].Credit.Equal(hundred) && lines[0].Debit.IsZero() &&
				lines[1].Debit.Equal(hundred) && lines[1].Credit.IsZero()
		}),
		mock.Anything).Return(nil)
	s.mockVoucherRepo.On("ReverseVoucher", mock.Anything,
		mock.MatchedBy(func(original domain.Voucher) bool { return original.VoucherID == s.voucherID }),
		mock.MatchedBy(func(reversal domain.Voucher) bool {
			return reversal.ReversalOfID != nil && *reversal.ReversalOfID == s.voucherID
		}),
		domain.StatusDraft,
		"2026-04",
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			// The reversal undoes the original posting's balance effect.
			return changes[s.cashAccount.AccountID].Equal(hundred.Neg()) &&
				changes[s.revenueAccount.AccountID].Equal(hundred.Neg())
		}),
		mock.MatchedBy(func(audits []domain.AuditEntry) bool { return len(audits) == 2 }),
	).Return(int64(43), nil)

	reversal, err := s.service.Reverse(context.Background(), s.tenantID, s.voucherID, "duplicate entry", s.userID)

	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, reversal.Status)
	s.Require().NotNil(reversal.ReversalOfID)
	s.Equal(s.voucherID, *reversal.ReversalOfID)
	s.Contains(reversal.Description, "duplicate entry")
	s.Require().NotNil(reversal.VoucherNumber)
	s.Equal(int64(43), *reversal.VoucherNumber)
	s.mockVoucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestReverse_ApprovalRuleRoutesThroughChain() {
	s.expectMemberAuthz()
	posted := s.draftVoucher("100.00")
	posted.Status = domain.StatusPosted
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(posted, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)

	current := s.period
	current.StartDate = time.Now().UTC().AddDate(0, -1, 0)
	current.EndDate = time.Now().UTC().AddDate(0, 1, 0)
	s.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, s.tenantID, mock.Anything).Return(s.accountsByID(), nil)
	s.mockPeriodRepo.On("FindPeriodByDate", mock.Anything, s.tenantID, mock.Anything).Return(&current, nil)

	s.mockVoucherRepo.On("SaveVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher"), mock.Anything, mock.Anything).Return(nil)

	rule := &domain.ApprovalRule{
		RuleID:    uuid.NewString(),
		TenantID:  s.tenantID,
		DocTypeID: s.docTypeID,
		Mode:      domain.Sequential,
		Roles:     []string{"SUPERVISOR"},
		IsActive:  true,
	}
	s.mockApprovalRepo.On("FindMatchingRule", mock.Anything, s.tenantID, s.docTypeID, mock.Anything).Return(rule, nil)
	s.mockApprovalRepo.On("SubmitWithSteps", mock.Anything, s.tenantID,
		mock.MatchedBy(func(voucherID string) bool { return voucherID != s.voucherID }),
		s.userID, mock.Anything,
		mock.MatchedBy(func(steps []domain.ApprovalStep) bool {
			return len(steps) == 1 && steps[0].RequiredRole == "SUPERVISOR" && steps[0].Status == domain.StepPending
		}), mock.Anything).Return(nil)

	reversal, err := s.service.Reverse(context.Background(), s.tenantID, s.voucherID, "wrong period", s.userID)

	s.Require().NoError(err)
	s.Equal(domain.StatusAwaitingApproval, reversal.Status)
	s.Require().NotNil(reversal.ReversalOfID)
	s.Equal(s.voucherID, *reversal.ReversalOfID)
	// The reversal waits in the approval chain; the original stays POSTED
	// until the reversal actually posts.
	s.mockVoucherRepo.AssertNotCalled(s.T(), "ReverseVoucher",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "UpdateVoucherStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestPostApproved_ReversalFlipsOriginal() {
	originalID := uuid.NewString()
	originalNumber := int64(42)
	original := &domain.Voucher{
		VoucherID:     originalID,
		TenantID:      s.tenantID,
		DocTypeID:     s.docTypeID,
		PeriodID:      s.periodID,
		VoucherDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Status:        domain.StatusPosted,
		VoucherNumber: &originalNumber,
		Amount:        decimal.RequireFromString("100.00"),
	}

	approved := s.draftVoucher("100.00")
	approved.Status = domain.StatusApproved
	approved.ReversalOfID = &originalID
	swapped := s.balancedLines("100.00")
	swapped[0].Debit, swapped[0].Credit = swapped[0].Credit, swapped[0].Debit
	swapped[1].Debit, swapped[1].Credit = swapped[1].Credit, swapped[1].Debit

	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(approved, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(swapped, nil)
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, originalID).Return(original, nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	s.mockVoucherRepo.On("ReverseVoucher", mock.Anything,
		mock.MatchedBy(func(v domain.Voucher) bool { return v.VoucherID == originalID }),
		mock.MatchedBy(func(v domain.Voucher) bool { return v.VoucherID == s.voucherID }),
		domain.StatusApproved,
		"2026-04",
		mock.Anything,
		mock.MatchedBy(func(audits []domain.AuditEntry) bool { return len(audits) == 2 }),
	).Return(int64(43), nil)

	reversal, err := s.service.PostApproved(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, reversal.Status)
	s.Require().NotNil(reversal.VoucherNumber)
	s.Equal(int64(43), *reversal.VoucherNumber)
	s.mockVoucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestPostApproved_ReversalOfAlreadyReversedRejected() {
	originalID := uuid.NewString()
	reversedBy := uuid.NewString()
	original := &domain.Voucher{
		VoucherID:    originalID,
		TenantID:     s.tenantID,
		DocTypeID:    s.docTypeID,
		Status:       domain.StatusPosted,
		ReversedByID: &reversedBy,
		Amount:       decimal.RequireFromString("100.00"),
	}

	approved := s.draftVoucher("100.00")
	approved.Status = domain.StatusApproved
	approved.ReversalOfID = &originalID

	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(approved, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, originalID).Return(original, nil)
	s.mockDocTypeRepo.On("FindDocumentTypeByID", mock.Anything, s.tenantID, s.docTypeID).Return(&s.docType, nil)
	s.expectValidationFetches()

	_, err := s.service.PostApproved(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "ReverseVoucher",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Cancel ---

func (s *VoucherServiceTestSuite) TestCancel_Draft() {
	s.expectMemberAuthz()
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.draftVoucher("100.00"), nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockVoucherRepo.On("UpdateVoucherStatus", mock.Anything, s.tenantID, s.voucherID,
		domain.StatusDraft, domain.StatusCancelled, s.userID, mock.Anything, mock.Anything).Return(nil)

	err := s.service.Cancel(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.mockApprovalRepo.AssertNotCalled(s.T(), "CancelPendingSteps", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCancel_AwaitingApprovalCancelsPendingSteps() {
	s.expectMemberAuthz()
	awaiting := s.draftVoucher("100.00")
	awaiting.Status = domain.StatusAwaitingApproval
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(awaiting, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)
	s.mockVoucherRepo.On("UpdateVoucherStatus", mock.Anything, s.tenantID, s.voucherID,
		domain.StatusAwaitingApproval, domain.StatusCancelled, s.userID, mock.Anything, mock.Anything).Return(nil)
	s.mockApprovalRepo.On("CancelPendingSteps", mock.Anything, s.tenantID, s.voucherID, s.userID, mock.Anything).Return(nil)

	err := s.service.Cancel(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.Require().NoError(err)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestCancel_PostedRejected() {
	s.expectMemberAuthz()
	posted := s.draftVoucher("100.00")
	posted.Status = domain.StatusPosted
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(posted, nil)
	s.mockVoucherRepo.On("FindLinesByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(s.balancedLines("100.00"), nil)

	err := s.service.Cancel(context.Background(), s.tenantID, s.voucherID, s.userID)

	s.ErrorIs(err, apperrors.ErrStateConflict)
}

func TestVoucherServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}
