package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/core/services"
)

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockApprovalRepo *MockApprovalRepository
	mockVoucherRepo  *MockVoucherRepository
	mockTenantSvc    *MockTenantService
	mockPoster       *MockVoucherPoster

	service portssvc.ApprovalSvcFacade

	tenantID  string
	voucherID string
	actorID   string
}

func (s *ApprovalServiceTestSuite) SetupTest() {
	s.mockApprovalRepo = new(MockApprovalRepository)
	s.mockVoucherRepo = new(MockVoucherRepository)
	s.mockTenantSvc = new(MockTenantService)
	s.mockPoster = new(MockVoucherPoster)

	s.service = services.NewApprovalService(s.mockApprovalRepo, s.mockVoucherRepo, s.mockTenantSvc, s.mockPoster)

	s.tenantID = uuid.NewString()
	s.voucherID = uuid.NewString()
	s.actorID = uuid.NewString()
}

func (s *ApprovalServiceTestSuite) awaitingVoucher() *domain.Voucher {
	return &domain.Voucher{
		VoucherID: s.voucherID,
		TenantID:  s.tenantID,
		Status:    domain.StatusAwaitingApproval,
	}
}

func (s *ApprovalServiceTestSuite) makeSteps(mode domain.ApprovalMode, roles ...string) []domain.ApprovalStep {
	steps := make([]domain.ApprovalStep, len(roles))
	for i, role := range roles {
		steps[i] = domain.ApprovalStep{
			StepID:       uuid.NewString(),
			VoucherID:    s.voucherID,
			TenantID:     s.tenantID,
			StepNumber:   i + 1,
			RequiredRole: role,
			Mode:         mode,
			Status:       domain.StepPending,
		}
	}
	return steps
}

func approvedCopy(steps []domain.ApprovalStep, index int) []domain.ApprovalStep {
	out := make([]domain.ApprovalStep, len(steps))
	copy(out, steps)
	out[index].Status = domain.StepApproved
	return out
}

func (s *ApprovalServiceTestSuite) expectMemberRead() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.actorID, s.tenantID, domain.RoleReadOnly).Return(nil)
}

func (s *ApprovalServiceTestSuite) expectHoldsRole(role string, holds bool) {
	s.mockTenantSvc.On("HoldsApproverRole", mock.Anything, s.actorID, s.tenantID, role, mock.Anything).Return(holds, nil)
}

// --- ApproveStep ---

func (s *ApprovalServiceTestSuite) TestApproveStep_NonFinalStepLeavesVoucherInRouting() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR", "CONTROLLER")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil).Once()
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[0].StepID, s.actorID, mock.Anything, "looks good", mock.Anything).Return(nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(steps, 0), nil).Once()

	voucher, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "looks good")

	s.Require().NoError(err)
	s.Equal(domain.StatusAwaitingApproval, voucher.Status)
	s.mockPoster.AssertNotCalled(s.T(), "PostApproved", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockVoucherRepo.AssertNotCalled(s.T(), "UpdateVoucherStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_CommentWithControlCharsAuditedAsValidJSON() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR", "CONTROLLER")
	comment := "line one\nline \"two\"\ttabbed"
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil).Once()
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[0].StepID, s.actorID, mock.Anything, comment,
		mock.MatchedBy(func(audit domain.AuditEntry) bool {
			if !json.Valid(audit.Detail) {
				return false
			}
			var detail map[string]string
			if err := json.Unmarshal(audit.Detail, &detail); err != nil {
				return false
			}
			return detail["comment"] == comment
		})).Return(nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(steps, 0), nil).Once()

	_, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, comment)

	s.Require().NoError(err)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

func (s *ApprovalServiceTestSuite) TestApproveStep_FinalStepApprovesAndPosts() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil).Once()
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[0].StepID, s.actorID, mock.Anything, "", mock.Anything).Return(nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(steps, 0), nil).Once()
	s.mockVoucherRepo.On("UpdateVoucherStatus", mock.Anything, s.tenantID, s.voucherID,
		domain.StatusAwaitingApproval, domain.StatusApproved, s.actorID, mock.Anything, mock.Anything).Return(nil)

	number := int64(42)
	posted := s.awaitingVoucher()
	posted.Status = domain.StatusPosted
	posted.VoucherNumber = &number
	s.mockPoster.On("PostApproved", mock.Anything, s.tenantID, s.voucherID, s.actorID).Return(posted, nil)

	voucher, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, voucher.Status)
	s.mockVoucherRepo.AssertExpectations(s.T())
	s.mockPoster.AssertExpectations(s.T())
}

func (s *ApprovalServiceTestSuite) TestApproveStep_FailedAutoPostLeavesVoucherApproved() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil).Once()
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[0].StepID, s.actorID, mock.Anything, "", mock.Anything).Return(nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(steps, 0), nil).Once()
	s.mockVoucherRepo.On("UpdateVoucherStatus", mock.Anything, s.tenantID, s.voucherID,
		domain.StatusAwaitingApproval, domain.StatusApproved, s.actorID, mock.Anything, mock.Anything).Return(nil)
	s.mockPoster.On("PostApproved", mock.Anything, s.tenantID, s.voucherID, s.actorID).Return(nil, apperrors.ErrValidation)

	voucher, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, voucher.Status)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_ConcurrentFinalApprovalOwnsPosting() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Parallel, "SUPERVISOR", "CONTROLLER")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil).Once()
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(steps, 1), nil).Once()
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[0].StepID, s.actorID, mock.Anything, "", mock.Anything).Return(nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(approvedCopy(steps, 0), 1), nil).Once()
	// The other approver's final action already moved the voucher on.
	s.mockVoucherRepo.On("UpdateVoucherStatus", mock.Anything, s.tenantID, s.voucherID,
		domain.StatusAwaitingApproval, domain.StatusApproved, s.actorID, mock.Anything, mock.Anything).Return(apperrors.ErrStateConflict)

	current := s.awaitingVoucher()
	current.Status = domain.StatusPosted
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(current, nil).Once()

	voucher, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.Require().NoError(err)
	s.Equal(domain.StatusPosted, voucher.Status)
	s.mockPoster.AssertNotCalled(s.T(), "PostApproved", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_SequentialOutOfOrder() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR", "CONTROLLER")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)

	_, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[1].StepID, s.actorID, "")

	s.ErrorIs(err, services.ErrStepOutOfOrder)
	s.mockApprovalRepo.AssertNotCalled(s.T(), "ApproveStep",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_ParallelStepsActionableInAnyOrder() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Parallel, "SUPERVISOR", "CONTROLLER")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil).Once()
	s.expectHoldsRole("CONTROLLER", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[1].StepID, s.actorID, mock.Anything, "", mock.Anything).Return(nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(approvedCopy(steps, 1), nil).Once()

	voucher, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[1].StepID, s.actorID, "")

	s.Require().NoError(err)
	s.Equal(domain.StatusAwaitingApproval, voucher.Status)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_RoleNotHeld() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)
	s.expectHoldsRole("SUPERVISOR", false)

	_, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.ErrorIs(err, services.ErrRoleNotHeld)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_LoserOfConcurrentActionGetsConflict() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("ApproveStep", mock.Anything, s.tenantID, steps[0].StepID, s.actorID, mock.Anything, "", mock.Anything).Return(apperrors.ErrConflict)

	_, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.ErrorIs(err, services.ErrStepNotActionable)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_AlreadyActionedStep() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	steps[0].Status = domain.StepApproved
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)

	_, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.ErrorIs(err, services.ErrStepNotActionable)
}

func (s *ApprovalServiceTestSuite) TestApproveStep_VoucherNoLongerInRouting() {
	s.expectMemberRead()
	posted := s.awaitingVoucher()
	posted.Status = domain.StatusPosted
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(posted, nil)

	_, err := s.service.ApproveStep(context.Background(), s.tenantID, s.voucherID, uuid.NewString(), s.actorID, "")

	s.ErrorIs(err, apperrors.ErrStateConflict)
}

// --- RejectStep ---

func (s *ApprovalServiceTestSuite) TestRejectStep_ReturnsVoucherToDraft() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR", "CONTROLLER")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)
	s.expectHoldsRole("SUPERVISOR", true)
	s.mockApprovalRepo.On("RejectStep", mock.Anything, s.tenantID, s.voucherID, steps[0].StepID, s.actorID, mock.Anything, "numbers look off", mock.Anything).Return(nil)

	err := s.service.RejectStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "numbers look off")

	s.Require().NoError(err)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

func (s *ApprovalServiceTestSuite) TestRejectStep_RoleNotHeld() {
	s.expectMemberRead()
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)
	s.expectHoldsRole("SUPERVISOR", false)

	err := s.service.RejectStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, s.actorID, "")

	s.ErrorIs(err, services.ErrRoleNotHeld)
	s.mockApprovalRepo.AssertNotCalled(s.T(), "RejectStep",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- EscalateStep ---

func (s *ApprovalServiceTestSuite) TestEscalateStep_RequiresAdmin() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.actorID, s.tenantID, domain.RoleAdmin).Return(apperrors.ErrForbidden)

	err := s.service.EscalateStep(context.Background(), s.tenantID, s.voucherID, uuid.NewString(), "CFO", s.actorID)

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ApprovalServiceTestSuite) TestEscalateStep_ReassignsRoleKeepingStepPending() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.actorID, s.tenantID, domain.RoleAdmin).Return(nil)
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)
	s.mockApprovalRepo.On("EscalateStep", mock.Anything, s.tenantID, steps[0].StepID, "CFO", mock.Anything, mock.Anything).Return(nil)

	err := s.service.EscalateStep(context.Background(), s.tenantID, s.voucherID, steps[0].StepID, "CFO", s.actorID)

	s.Require().NoError(err)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

// --- EscalateOverdue ---

func (s *ApprovalServiceTestSuite) TestEscalateOverdue_ContinuesPastFailures() {
	overdue := s.makeSteps(domain.Sequential, "SUPERVISOR", "CONTROLLER")
	s.mockApprovalRepo.On("ListPendingStepsOlderThan", mock.Anything, mock.Anything).Return(overdue, nil)
	s.mockApprovalRepo.On("EscalateStep", mock.Anything, s.tenantID, overdue[0].StepID, "CFO", mock.Anything, mock.Anything).Return(nil)
	s.mockApprovalRepo.On("EscalateStep", mock.Anything, s.tenantID, overdue[1].StepID, "CFO", mock.Anything, mock.Anything).Return(apperrors.ErrInternal)

	escalated, err := s.service.EscalateOverdue(context.Background(), "CFO", 72*time.Hour)

	s.Require().NoError(err)
	s.Equal(1, escalated)
	s.mockApprovalRepo.AssertExpectations(s.T())
}

func (s *ApprovalServiceTestSuite) TestEscalateOverdue_NothingPending() {
	s.mockApprovalRepo.On("ListPendingStepsOlderThan", mock.Anything, mock.Anything).Return([]domain.ApprovalStep{}, nil)

	escalated, err := s.service.EscalateOverdue(context.Background(), "CFO", 72*time.Hour)

	s.Require().NoError(err)
	s.Zero(escalated)
}

// --- ListSteps ---

func (s *ApprovalServiceTestSuite) TestListSteps() {
	s.mockTenantSvc.On("AuthorizeUserAction", mock.Anything, s.actorID, s.tenantID, domain.RoleReadOnly).Return(nil)
	steps := s.makeSteps(domain.Sequential, "SUPERVISOR", "CONTROLLER")
	s.mockVoucherRepo.On("FindVoucherByID", mock.Anything, s.tenantID, s.voucherID).Return(s.awaitingVoucher(), nil)
	s.mockApprovalRepo.On("FindStepsByVoucherID", mock.Anything, s.tenantID, s.voucherID).Return(steps, nil)

	got, err := s.service.ListSteps(context.Background(), s.tenantID, s.voucherID, s.actorID)

	s.Require().NoError(err)
	s.Len(got, 2)
	s.Equal(steps[0].StepID, got[0].StepID)
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
