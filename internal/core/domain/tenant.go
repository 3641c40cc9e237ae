package domain

import "time"

// Tenant is the isolation boundary: every other entity carries a tenant identifier,
// and no code path may read or write another tenant's rows.
type Tenant struct {
	TenantID    string `json:"tenantID"` // Primary Key (UUID)
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// UserTenantRole defines the base membership roles a user can hold within a tenant.
type UserTenantRole string

const (
	RoleAdmin    UserTenantRole = "ADMIN"
	RoleMember   UserTenantRole = "MEMBER"
	RoleReadOnly UserTenantRole = "READONLY"
	RoleRemoved  UserTenantRole = "REMOVED"
)

// UserTenant represents the membership of a User in a Tenant.
type UserTenant struct {
	UserID   string         `json:"userID"`
	UserName string         `json:"userName"`
	TenantID string         `json:"tenantID"`
	Role     UserTenantRole `json:"role"`
	JoinedAt time.Time      `json:"joinedAt"`
}

// ApproverRole grants a user a named approval role (e.g. "MANAGER", "DIRECTOR")
// within a tenant. Approval rules reference these role names.
type ApproverRole struct {
	TenantID  string    `json:"tenantID"`
	UserID    string    `json:"userID"`
	Role      string    `json:"role"`
	GrantedBy string    `json:"grantedBy"`
	GrantedAt time.Time `json:"grantedAt"`
}

// RoleDelegation temporarily delegates an approval role from one user to another
// for a bounded time window. A delegation is active at time t when
// StartsAt <= t < EndsAt.
type RoleDelegation struct {
	DelegationID string    `json:"delegationID"`
	TenantID     string    `json:"tenantID"`
	Role         string    `json:"role"`
	FromUserID   string    `json:"fromUserID"`
	ToUserID     string    `json:"toUserID"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	AuditFields
}

// ActiveAt reports whether the delegation window covers the given instant.
func (d RoleDelegation) ActiveAt(t time.Time) bool {
	return !t.Before(d.StartsAt) && t.Before(d.EndsAt)
}
