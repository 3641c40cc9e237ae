package services

import (
	"context"
	"errors"
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

// tenantService manages tenants, memberships, approver roles and delegations.
// It is also the tenant isolation guard: every other service calls
// AuthorizeUserAction before touching tenant-scoped data.
type tenantService struct {
	tenantRepo portsrepo.TenantRepositoryFacade
	userSvc    portssvc.UserSvcFacade
}

// NewTenantService creates a new TenantService.
func NewTenantService(tenantRepo portsrepo.TenantRepositoryFacade, userSvc portssvc.UserSvcFacade) portssvc.TenantSvcFacade {
	return &tenantService{
		tenantRepo: tenantRepo,
		userSvc:    userSvc,
	}
}

var _ portssvc.TenantSvcFacade = (*tenantService)(nil)

// CreateTenant creates a tenant and makes the creator its admin.
func (s *tenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorUserID string) (*domain.Tenant, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userSvc.GetUserByID(ctx, creatorUserID); err != nil {
		return nil, fmt.Errorf("creator user %s not found: %w", creatorUserID, err)
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		TenantID:    uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.tenantRepo.SaveTenant(ctx, tenant, creatorUserID); err != nil {
		logger.Error("Failed to save tenant", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}

	logger.Info("Tenant created", slog.String("tenant_id", tenant.TenantID), slog.String("creator_id", creatorUserID))
	return &tenant, nil
}

func (s *tenantService) GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant %s: %w", tenantID, err)
	}
	return tenant, nil
}

func (s *tenantService) ListUserTenants(ctx context.Context, userID string) ([]domain.Tenant, error) {
	tenants, err := s.tenantRepo.ListTenantsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants for user %s: %w", userID, err)
	}
	return tenants, nil
}

// AddUserToTenant adds a user to the tenant. Only admins may do this.
func (s *tenantService) AddUserToTenant(ctx context.Context, tenantID, userID string, role domain.UserTenantRole, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.userSvc.GetUserByID(ctx, userID); err != nil {
		return fmt.Errorf("user %s not found: %w", userID, err)
	}

	now := time.Now().UTC()
	membership := domain.UserTenant{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		JoinedAt: now,
	}

	if err := s.tenantRepo.AddUserToTenant(ctx, membership); err != nil {
		logger.Error("Failed to add user to tenant", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("user_id", userID))
		return fmt.Errorf("failed to add user to tenant: %w", err)
	}
	return nil
}

// RemoveUserFromTenant marks the membership REMOVED. Admins cannot remove themselves.
func (s *tenantService) RemoveUserFromTenant(ctx context.Context, tenantID, userID, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}
	if userID == requestingUserID {
		return fmt.Errorf("%w: cannot remove yourself from a tenant", apperrors.ErrValidation)
	}

	membership := domain.UserTenant{
		UserID:   userID,
		TenantID: tenantID,
		Role:     domain.RoleRemoved,
	}
	if err := s.tenantRepo.AddUserToTenant(ctx, membership); err != nil {
		return fmt.Errorf("failed to remove user from tenant: %w", err)
	}
	return nil
}

func (s *tenantService) ListTenantUsers(ctx context.Context, tenantID, requestingUserID string) ([]domain.UserTenant, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	users, err := s.tenantRepo.ListTenantUsers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant users: %w", err)
	}
	return users, nil
}

// AuthorizeUserAction verifies the user holds at least one of the given roles
// in the tenant. Missing membership maps to ErrForbidden so that probing
// cannot distinguish "no tenant" from "not a member".
func (s *tenantService) AuthorizeUserAction(ctx context.Context, userID, tenantID string, roles ...domain.UserTenantRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	role, err := s.tenantRepo.FindUserTenantRole(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("user %s has no access to tenant %s: %w", userID, tenantID, apperrors.ErrForbidden)
		}
		logger.Error("Failed to check tenant membership", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("tenant_id", tenantID))
		return fmt.Errorf("failed to check tenant membership: %w", err)
	}
	if role == domain.RoleRemoved {
		return fmt.Errorf("user %s was removed from tenant %s: %w", userID, tenantID, apperrors.ErrForbidden)
	}

	for _, allowed := range roles {
		if roleSatisfies(role, allowed) {
			return nil
		}
	}
	return fmt.Errorf("user %s lacks required role in tenant %s: %w", userID, tenantID, apperrors.ErrForbidden)
}

// roleSatisfies reports whether held covers required. ADMIN covers MEMBER,
// MEMBER covers READONLY.
func roleSatisfies(held, required domain.UserTenantRole) bool {
	rank := map[domain.UserTenantRole]int{
		domain.RoleReadOnly: 1,
		domain.RoleMember:   2,
		domain.RoleAdmin:    3,
	}
	h, ok := rank[held]
	if !ok {
		return false
	}
	r, ok := rank[required]
	if !ok {
		return false
	}
	return h >= r
}

// HoldsApproverRole checks a direct grant first, then an active delegation.
func (s *tenantService) HoldsApproverRole(ctx context.Context, userID, tenantID, role string, asOf time.Time) (bool, error) {
	held, err := s.tenantRepo.HasApproverRole(ctx, tenantID, userID, role)
	if err != nil {
		return false, fmt.Errorf("failed to check approver role: %w", err)
	}
	if held {
		return true, nil
	}

	delegated, err := s.tenantRepo.HasActiveDelegation(ctx, tenantID, userID, role, asOf)
	if err != nil {
		return false, fmt.Errorf("failed to check role delegation: %w", err)
	}
	return delegated, nil
}

func (s *tenantService) GrantApproverRole(ctx context.Context, tenantID, userID, role, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.userSvc.GetUserByID(ctx, userID); err != nil {
		return fmt.Errorf("user %s not found: %w", userID, err)
	}

	grant := domain.ApproverRole{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		GrantedBy: requestingUserID,
		GrantedAt: time.Now().UTC(),
	}
	if err := s.tenantRepo.GrantApproverRole(ctx, grant); err != nil {
		logger.Error("Failed to grant approver role", slog.String("error", err.Error()), slog.String("tenant_id", tenantID), slog.String("user_id", userID), slog.String("role", role))
		return fmt.Errorf("failed to grant approver role: %w", err)
	}
	logger.Info("Approver role granted", slog.String("tenant_id", tenantID), slog.String("user_id", userID), slog.String("role", role))
	return nil
}

func (s *tenantService) RevokeApproverRole(ctx context.Context, tenantID, userID, role, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.tenantRepo.RevokeApproverRole(ctx, tenantID, userID, role); err != nil {
		return fmt.Errorf("failed to revoke approver role: %w", err)
	}
	return nil
}

func (s *tenantService) ListApproverRoles(ctx context.Context, tenantID, requestingUserID string) ([]domain.ApproverRole, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	roles, err := s.tenantRepo.ListApproverRoles(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approver roles: %w", err)
	}
	return roles, nil
}

// DelegateRole lets a user delegate an approver role they themselves hold.
// The delegate must be a tenant member.
func (s *tenantService) DelegateRole(ctx context.Context, tenantID string, req dto.CreateDelegationRequest, requestingUserID string) (*domain.RoleDelegation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleMember); err != nil {
		return nil, err
	}

	holds, err := s.tenantRepo.HasApproverRole(ctx, tenantID, requestingUserID, req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to check approver role: %w", err)
	}
	if !holds {
		return nil, fmt.Errorf("user %s does not hold role %s and cannot delegate it: %w", requestingUserID, req.Role, apperrors.ErrForbidden)
	}

	if err := s.AuthorizeUserAction(ctx, req.ToUserID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, fmt.Errorf("delegate must be a tenant member: %w", err)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("%w: delegation must end after it starts", apperrors.ErrValidation)
	}

	delegation := domain.RoleDelegation{
		DelegationID: uuid.NewString(),
		TenantID:     tenantID,
		Role:         req.Role,
		FromUserID:   requestingUserID,
		ToUserID:     req.ToUserID,
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt.UTC(),
	}
	if err := s.tenantRepo.SaveDelegation(ctx, delegation); err != nil {
		logger.Error("Failed to save delegation", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save delegation: %w", err)
	}

	logger.Info("Role delegated", slog.String("tenant_id", tenantID), slog.String("role", req.Role), slog.String("from", requestingUserID), slog.String("to", req.ToUserID))
	return &delegation, nil
}

func (s *tenantService) ListDelegations(ctx context.Context, tenantID, requestingUserID string) ([]domain.RoleDelegation, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, tenantID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	delegations, err := s.tenantRepo.ListDelegations(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegations: %w", err)
	}
	return delegations, nil
}
