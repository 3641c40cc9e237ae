package dto

import (
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
)

// --- Tenant DTOs ---

// CreateTenantRequest defines data for creating a new tenant.
type CreateTenantRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// TenantResponse defines data returned for a tenant.
type TenantResponse struct {
	TenantID      string    `json:"tenantID"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToTenantResponse converts domain.Tenant to DTO.
func ToTenantResponse(t *domain.Tenant) TenantResponse {
	return TenantResponse{
		TenantID:      t.TenantID,
		Name:          t.Name,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		LastUpdatedAt: t.LastUpdatedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}

// ListTenantsResponse wraps a list of tenants.
type ListTenantsResponse struct {
	Tenants []TenantResponse `json:"tenants"`
}

// ToListTenantsResponse converts a slice of domain.Tenant to DTO.
func ToListTenantsResponse(ts []domain.Tenant) ListTenantsResponse {
	list := make([]TenantResponse, len(ts))
	for i, t := range ts {
		list[i] = ToTenantResponse(&t)
	}
	return ListTenantsResponse{Tenants: list}
}

// --- Membership DTOs ---

// AddUserToTenantRequest defines data for adding a user to a tenant.
type AddUserToTenantRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.UserTenantRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UserTenantResponse defines data returned about a user's membership.
type UserTenantResponse struct {
	UserID   string                `json:"userID"`
	TenantID string                `json:"tenantID"`
	Role     domain.UserTenantRole `json:"role"`
	JoinedAt time.Time             `json:"joinedAt"`
}

// ToUserTenantResponse converts domain.UserTenant to DTO.
func ToUserTenantResponse(ut *domain.UserTenant) UserTenantResponse {
	return UserTenantResponse{
		UserID:   ut.UserID,
		TenantID: ut.TenantID,
		Role:     ut.Role,
		JoinedAt: ut.JoinedAt,
	}
}

// --- Approver role DTOs ---

// GrantApproverRoleRequest defines data for granting an approver role.
type GrantApproverRoleRequest struct {
	UserID string `json:"userID" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// ApproverRoleResponse defines data returned for an approver role grant.
type ApproverRoleResponse struct {
	TenantID  string    `json:"tenantID"`
	UserID    string    `json:"userID"`
	Role      string    `json:"role"`
	GrantedBy string    `json:"grantedBy"`
	GrantedAt time.Time `json:"grantedAt"`
}

// ToApproverRoleResponse converts domain.ApproverRole to DTO.
func ToApproverRoleResponse(ar *domain.ApproverRole) ApproverRoleResponse {
	return ApproverRoleResponse{
		TenantID:  ar.TenantID,
		UserID:    ar.UserID,
		Role:      ar.Role,
		GrantedBy: ar.GrantedBy,
		GrantedAt: ar.GrantedAt,
	}
}

// --- Delegation DTOs ---

// CreateDelegationRequest defines data for delegating an approver role.
type CreateDelegationRequest struct {
	Role     string    `json:"role" binding:"required"`
	ToUserID string    `json:"toUserID" binding:"required"`
	StartsAt time.Time `json:"startsAt" binding:"required"`
	EndsAt   time.Time `json:"endsAt" binding:"required,gtfield=StartsAt"`
}

// DelegationResponse defines data returned for a role delegation.
type DelegationResponse struct {
	DelegationID string    `json:"delegationID"`
	TenantID     string    `json:"tenantID"`
	Role         string    `json:"role"`
	FromUserID   string    `json:"fromUserID"`
	ToUserID     string    `json:"toUserID"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
}

// ToDelegationResponse converts domain.RoleDelegation to DTO.
func ToDelegationResponse(d *domain.RoleDelegation) DelegationResponse {
	return DelegationResponse{
		DelegationID: d.DelegationID,
		TenantID:     d.TenantID,
		Role:         d.Role,
		FromUserID:   d.FromUserID,
		ToUserID:     d.ToUserID,
		StartsAt:     d.StartsAt,
		EndsAt:       d.EndsAt,
	}
}
