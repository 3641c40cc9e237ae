package repositories

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TenantRepositoryFacade defines persistence for tenants, memberships,
// approver role grants and delegations.
type TenantRepositoryFacade interface {
	// SaveTenant persists a new tenant and the creator's admin membership in
	// one transaction.
	SaveTenant(ctx context.Context, tenant domain.Tenant, creatorUserID string) error
	FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]domain.Tenant, error)

	// AddUserToTenant upserts a membership; writing RoleRemoved is how a user
	// is removed from a tenant.
	AddUserToTenant(ctx context.Context, membership domain.UserTenant) error
	FindUserTenantRole(ctx context.Context, userID, tenantID string) (domain.UserTenantRole, error)
	ListTenantUsers(ctx context.Context, tenantID string) ([]domain.UserTenant, error)

	GrantApproverRole(ctx context.Context, grant domain.ApproverRole) error
	RevokeApproverRole(ctx context.Context, tenantID, userID, role string) error
	HasApproverRole(ctx context.Context, tenantID, userID, role string) (bool, error)
	ListApproverRoles(ctx context.Context, tenantID string) ([]domain.ApproverRole, error)

	SaveDelegation(ctx context.Context, delegation domain.RoleDelegation) error
	HasActiveDelegation(ctx context.Context, tenantID, toUserID, role string, asOf time.Time) (bool, error)
	ListDelegations(ctx context.Context, tenantID string) ([]domain.RoleDelegation, error)
}

// PeriodRepositoryFacade defines persistence for fiscal periods.
type PeriodRepositoryFacade interface {
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error
	FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error)
	FindPeriodByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, tenantID string, fiscalYear int) ([]domain.FiscalPeriod, error)

	// SetPeriodClosed flips the closed flag and writes the audit entry in one
	// transaction. Closing an already-closed period (or reopening an open one)
	// fails with ErrStateConflict.
	SetPeriodClosed(ctx context.Context, tenantID, periodID string, closed bool, actorID string, at time.Time, audit domain.AuditEntry) error
}

// DocumentTypeRepositoryFacade defines persistence for document type configuration.
type DocumentTypeRepositoryFacade interface {
	SaveDocumentType(ctx context.Context, docType domain.DocumentType) error
	FindDocumentTypeByID(ctx context.Context, tenantID, docTypeID string) (*domain.DocumentType, error)
	ListDocumentTypes(ctx context.Context, tenantID string) ([]domain.DocumentType, error)
	UpdateDocumentType(ctx context.Context, docType domain.DocumentType) error
}

// SequenceRepository is the Sequencer: one durable counter row per
// (tenant, document type, period key), incremented atomically.
type SequenceRepository interface {
	// NextNumberInTx issues the next number for the key on the caller's
	// transaction. The single upsert-increment statement holds the row lock
	// only for its own duration; concurrent callers on the same key serialize
	// on that lock. If the surrounding transaction later rolls back, the
	// increment rolls back with it; a number lost after commit stays a gap,
	// since numbers are never reused or backfilled.
	NextNumberInTx(ctx context.Context, tx pgx.Tx, tenantID, docTypeID, periodKey string) (int64, error)

	// CurrentNumber returns the last issued number for a key, 0 if none yet.
	CurrentNumber(ctx context.Context, tenantID, docTypeID, periodKey string) (int64, error)
}

// AuditRepositoryFacade defines the append-only audit log. Entries are never
// updated or deleted.
type AuditRepositoryFacade interface {
	SaveEntry(ctx context.Context, entry domain.AuditEntry) error
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.AuditEntry) error
	ListBySubject(ctx context.Context, tenantID, subjectType, subjectID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error)
}

// UserRepositoryFacade defines persistence for application users.
type UserRepositoryFacade interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	DeleteUser(ctx context.Context, userID string, at time.Time) error
}

// RepositoryProvider bundles every repository implementation for service wiring.
type RepositoryProvider struct {
	TenantRepo   TenantRepositoryFacade
	UserRepo     UserRepositoryFacade
	AccountRepo  AccountRepositoryFacade
	PeriodRepo   PeriodRepositoryFacade
	DocTypeRepo  DocumentTypeRepositoryFacade
	SequenceRepo SequenceRepository
	VoucherRepo  VoucherRepositoryWithTx
	ApprovalRepo ApprovalRepositoryFacade
	AuditRepo    AuditRepositoryFacade
}
