package services

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/dto"
)

// TenantSvcFacade defines tenant management and the isolation guard every
// other service consults before touching tenant-scoped data.
type TenantSvcFacade interface {
	CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error)
	GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)
	ListUserTenants(ctx context.Context, userID string) ([]domain.Tenant, error)

	AddUserToTenant(ctx context.Context, tenantID, userID string, role domain.UserTenantRole, requestingUserID string) error
	RemoveUserFromTenant(ctx context.Context, tenantID, userID, requestingUserID string) error
	ListTenantUsers(ctx context.Context, tenantID, requestingUserID string) ([]domain.UserTenant, error)

	// AuthorizeUserAction verifies the user holds one of the given roles in
	// the tenant. Returns ErrForbidden otherwise. Every tenant-scoped
	// operation goes through this guard.
	AuthorizeUserAction(ctx context.Context, userID, tenantID string, roles ...domain.UserTenantRole) error

	// HoldsApproverRole reports whether the user holds the approver role in
	// the tenant at the given instant, directly or through an active
	// delegation.
	HoldsApproverRole(ctx context.Context, userID, tenantID, role string, asOf time.Time) (bool, error)

	GrantApproverRole(ctx context.Context, tenantID, userID, role, requestingUserID string) error
	RevokeApproverRole(ctx context.Context, tenantID, userID, role, requestingUserID string) error
	ListApproverRoles(ctx context.Context, tenantID, requestingUserID string) ([]domain.ApproverRole, error)

	DelegateRole(ctx context.Context, tenantID string, req dto.CreateDelegationRequest, requestingUserID string) (*domain.RoleDelegation, error)
	ListDelegations(ctx context.Context, tenantID, requestingUserID string) ([]domain.RoleDelegation, error)
}
