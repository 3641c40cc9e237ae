package services

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/dto"
)

// AccountSvcFacade manages the chart of accounts.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, tenantID, accountID, userID string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string, userID string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID, userID string, limit, offset int) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, tenantID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error
}

// PeriodSvcFacade manages fiscal periods and their posting window.
type PeriodSvcFacade interface {
	CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.FiscalPeriod, error)
	GetPeriodByID(ctx context.Context, tenantID, periodID, userID string) (*domain.FiscalPeriod, error)
	// ListPeriods lists the tenant's periods; a zero fiscalYear means all years.
	ListPeriods(ctx context.Context, tenantID, userID string, fiscalYear int) ([]domain.FiscalPeriod, error)
	// ClosePeriod blocks further posting into the period. Idempotent closes
	// return ErrStateConflict.
	ClosePeriod(ctx context.Context, tenantID, periodID, userID string) error
	ReopenPeriod(ctx context.Context, tenantID, periodID, userID string) error
}

// DocumentTypeSvcFacade manages document types and their numbering/approval settings.
type DocumentTypeSvcFacade interface {
	CreateDocumentType(ctx context.Context, tenantID string, req dto.CreateDocumentTypeRequest, creatorUserID string) (*domain.DocumentType, error)
	GetDocumentTypeByID(ctx context.Context, tenantID, docTypeID, userID string) (*domain.DocumentType, error)
	ListDocumentTypes(ctx context.Context, tenantID, userID string) ([]domain.DocumentType, error)
	UpdateDocumentType(ctx context.Context, tenantID, docTypeID string, req dto.UpdateDocumentTypeRequest, userID string) (*domain.DocumentType, error)
}

// UserSvcFacade manages user accounts.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	// Authenticate verifies credentials and returns the user on success.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	// SetRefreshToken stores the hash and expiry of a newly issued refresh token.
	SetRefreshToken(ctx context.Context, userID, tokenHash string, expiry time.Time) error
}

// AuthSvcFacade issues and refreshes access tokens.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req dto.CreateUserRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
}

// AuditSvcFacade exposes the append-only audit trail.
type AuditSvcFacade interface {
	ListAuditTrail(ctx context.Context, tenantID, subjectType, subjectID, userID string) ([]domain.AuditEntry, error)
	// RecordEntry appends a standalone audit entry outside of a repository
	// transaction, for actions without their own persistence (e.g. logins).
	RecordEntry(ctx context.Context, tenantID, subjectType, subjectID string, action domain.AuditAction, actorID string, detail any, at time.Time) error
}

// ServiceContainer aggregates the service layer for handler wiring.
type ServiceContainer struct {
	TenantSvc       TenantSvcFacade
	UserSvc         UserSvcFacade
	AuthSvc         AuthSvcFacade
	AccountSvc      AccountSvcFacade
	PeriodSvc       PeriodSvcFacade
	DocTypeSvc      DocumentTypeSvcFacade
	VoucherSvc      VoucherSvcFacade
	ApprovalSvc     ApprovalSvcFacade
	ApprovalRuleSvc ApprovalRuleSvcFacade
	AuditSvc        AuditSvcFacade
}
