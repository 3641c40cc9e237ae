package services_test

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock VoucherRepository ---

type MockVoucherRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherRepositoryWithTx = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockVoucherRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockVoucherRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, tenantID, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, tenantID, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) FindLinesByVoucherID(ctx context.Context, tenantID, voucherID string) ([]domain.VoucherLine, error) {
	args := m.Called(ctx, tenantID, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VoucherLine), args.Error(1)
}

func (m *MockVoucherRepository) FindLinesByVoucherIDs(ctx context.Context, tenantID string, voucherIDs []string) (map[string][]domain.VoucherLine, error) {
	args := m.Called(ctx, tenantID, voucherIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.VoucherLine), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchersByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, status *domain.VoucherStatus, includeReversals bool) ([]domain.Voucher, *string, error) {
	args := m.Called(ctx, tenantID, limit, nextToken, status, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.Voucher), token, args.Error(2)
}

func (m *MockVoucherRepository) ListPostedLinesByAccount(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.VoucherLine, *string, error) {
	args := m.Called(ctx, tenantID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.VoucherLine), token, args.Error(2)
}

func (m *MockVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher, lines []domain.VoucherLine, audit domain.AuditEntry) error {
	args := m.Called(ctx, voucher, lines, audit)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateDraft(ctx context.Context, voucher domain.Voucher, lines []domain.VoucherLine, audit domain.AuditEntry) error {
	args := m.Called(ctx, voucher, lines, audit)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateVoucherStatus(ctx context.Context, tenantID, voucherID string, from, to domain.VoucherStatus, actorID string, at time.Time, audit domain.AuditEntry) error {
	args := m.Called(ctx, tenantID, voucherID, from, to, actorID, at, audit)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateVoucherStatusInTx(ctx context.Context, tx pgx.Tx, tenantID, voucherID string, from, to domain.VoucherStatus, actorID string, at time.Time) error {
	args := m.Called(ctx, tx, tenantID, voucherID, from, to, actorID, at)
	return args.Error(0)
}

func (m *MockVoucherRepository) PostVoucher(ctx context.Context, voucher domain.Voucher, from domain.VoucherStatus, periodKey string, balanceChanges map[string]decimal.Decimal, audit domain.AuditEntry) (int64, error) {
	args := m.Called(ctx, voucher, from, periodKey, balanceChanges, audit)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVoucherRepository) ReverseVoucher(ctx context.Context, original domain.Voucher, reversal domain.Voucher, from domain.VoucherStatus, periodKey string, balanceChanges map[string]decimal.Decimal, audits []domain.AuditEntry) (int64, error) {
	args := m.Called(ctx, original, reversal, from, periodKey, balanceChanges, audits)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ApprovalRepository ---

type MockApprovalRepository struct {
	mock.Mock
}

var _ portsrepo.ApprovalRepositoryFacade = (*MockApprovalRepository)(nil)

func (m *MockApprovalRepository) FindMatchingRule(ctx context.Context, tenantID, docTypeID string, amount decimal.Decimal) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, tenantID, docTypeID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRule), args.Error(1)
}

func (m *MockApprovalRepository) FindRuleByID(ctx context.Context, tenantID, ruleID string) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, tenantID, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRule), args.Error(1)
}

func (m *MockApprovalRepository) ListRules(ctx context.Context, tenantID string) ([]domain.ApprovalRule, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalRule), args.Error(1)
}

func (m *MockApprovalRepository) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockApprovalRepository) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockApprovalRepository) FindStepByID(ctx context.Context, tenantID, stepID string) (*domain.ApprovalStep, error) {
	args := m.Called(ctx, tenantID, stepID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalStep), args.Error(1)
}

func (m *MockApprovalRepository) FindStepsByVoucherID(ctx context.Context, tenantID, voucherID string) ([]domain.ApprovalStep, error) {
	args := m.Called(ctx, tenantID, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalStep), args.Error(1)
}

func (m *MockApprovalRepository) ListPendingStepsOlderThan(ctx context.Context, cutoff time.Time) ([]domain.ApprovalStep, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalStep), args.Error(1)
}

func (m *MockApprovalRepository) SubmitWithSteps(ctx context.Context, tenantID, voucherID, actorID string, at time.Time, steps []domain.ApprovalStep, audit domain.AuditEntry) error {
	args := m.Called(ctx, tenantID, voucherID, actorID, at, steps, audit)
	return args.Error(0)
}

func (m *MockApprovalRepository) ApproveStep(ctx context.Context, tenantID, stepID, actorID string, at time.Time, comment string, audit domain.AuditEntry) error {
	args := m.Called(ctx, tenantID, stepID, actorID, at, comment, audit)
	return args.Error(0)
}

func (m *MockApprovalRepository) RejectStep(ctx context.Context, tenantID, voucherID, stepID, actorID string, at time.Time, comment string, audit domain.AuditEntry) error {
	args := m.Called(ctx, tenantID, voucherID, stepID, actorID, at, comment, audit)
	return args.Error(0)
}

func (m *MockApprovalRepository) CancelPendingSteps(ctx context.Context, tenantID, voucherID, actorID string, at time.Time) error {
	args := m.Called(ctx, tenantID, voucherID, actorID, at)
	return args.Error(0)
}

func (m *MockApprovalRepository) EscalateStep(ctx context.Context, tenantID, stepID, escalationRole string, at time.Time, audit domain.AuditEntry) error {
	args := m.Called(ctx, tenantID, stepID, escalationRole, at, audit)
	return args.Error(0)
}

// --- Mock PeriodRepository ---

type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, tenantID string, fiscalYear int) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodRepository) SetPeriodClosed(ctx context.Context, tenantID, periodID string, closed bool, actorID string, at time.Time, audit domain.AuditEntry) error {
	args := m.Called(ctx, tenantID, periodID, closed, actorID, at, audit)
	return args.Error(0)
}

// --- Mock DocumentTypeRepository ---

type MockDocumentTypeRepository struct {
	mock.Mock
}

var _ portsrepo.DocumentTypeRepositoryFacade = (*MockDocumentTypeRepository)(nil)

func (m *MockDocumentTypeRepository) SaveDocumentType(ctx context.Context, docType domain.DocumentType) error {
	args := m.Called(ctx, docType)
	return args.Error(0)
}

func (m *MockDocumentTypeRepository) FindDocumentTypeByID(ctx context.Context, tenantID, docTypeID string) (*domain.DocumentType, error) {
	args := m.Called(ctx, tenantID, docTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) ListDocumentTypes(ctx context.Context, tenantID string) ([]domain.DocumentType, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) UpdateDocumentType(ctx context.Context, docType domain.DocumentType) error {
	args := m.Called(ctx, docType)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, actorID string, at time.Time) error {
	args := m.Called(ctx, tenantID, accountID, actorID, at)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, tenantID string, balanceChanges map[string]decimal.Decimal, actorID string, at time.Time) error {
	args := m.Called(ctx, tx, tenantID, balanceChanges, actorID, at)
	return args.Error(0)
}

// --- Mock TenantService ---

type MockTenantService struct {
	mock.Mock
}

var _ portssvc.TenantSvcFacade = (*MockTenantService)(nil)

func (m *MockTenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantService) GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantService) ListUserTenants(ctx context.Context, userID string) ([]domain.Tenant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tenant), args.Error(1)
}

func (m *MockTenantService) AddUserToTenant(ctx context.Context, tenantID, userID string, role domain.UserTenantRole, requestingUserID string) error {
	args := m.Called(ctx, tenantID, userID, role, requestingUserID)
	return args.Error(0)
}

func (m *MockTenantService) RemoveUserFromTenant(ctx context.Context, tenantID, userID, requestingUserID string) error {
	args := m.Called(ctx, tenantID, userID, requestingUserID)
	return args.Error(0)
}

func (m *MockTenantService) ListTenantUsers(ctx context.Context, tenantID, requestingUserID string) ([]domain.UserTenant, error) {
	args := m.Called(ctx, tenantID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserTenant), args.Error(1)
}

func (m *MockTenantService) AuthorizeUserAction(ctx context.Context, userID, tenantID string, roles ...domain.UserTenantRole) error {
	callArgs := []interface{}{ctx, userID, tenantID}
	for _, r := range roles {
		callArgs = append(callArgs, r)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

func (m *MockTenantService) HoldsApproverRole(ctx context.Context, userID, tenantID, role string, asOf time.Time) (bool, error) {
	args := m.Called(ctx, userID, tenantID, role, asOf)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantService) GrantApproverRole(ctx context.Context, tenantID, userID, role, requestingUserID string) error {
	args := m.Called(ctx, tenantID, userID, role, requestingUserID)
	return args.Error(0)
}

func (m *MockTenantService) RevokeApproverRole(ctx context.Context, tenantID, userID, role, requestingUserID string) error {
	args := m.Called(ctx, tenantID, userID, role, requestingUserID)
	return args.Error(0)
}

func (m *MockTenantService) ListApproverRoles(ctx context.Context, tenantID, requestingUserID string) ([]domain.ApproverRole, error) {
	args := m.Called(ctx, tenantID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApproverRole), args.Error(1)
}

func (m *MockTenantService) DelegateRole(ctx context.Context, tenantID string, req dto.CreateDelegationRequest, requestingUserID string) (*domain.RoleDelegation, error) {
	args := m.Called(ctx, tenantID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleDelegation), args.Error(1)
}

func (m *MockTenantService) ListDelegations(ctx context.Context, tenantID, requestingUserID string) ([]domain.RoleDelegation, error) {
	args := m.Called(ctx, tenantID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoleDelegation), args.Error(1)
}

// --- Mock VoucherPoster ---

type MockVoucherPoster struct {
	mock.Mock
}

var _ portssvc.VoucherPoster = (*MockVoucherPoster)(nil)

func (m *MockVoucherPoster) PostApproved(ctx context.Context, tenantID, voucherID, actorID string) (*domain.Voucher, error) {
	args := m.Called(ctx, tenantID, voucherID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}
