package models

import "time"

// Tenant maps to the tenants table.
type Tenant struct {
	TenantID    string `json:"tenantID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// UserTenant maps to the user_tenants membership table.
type UserTenant struct {
	UserID   string    `json:"userID"`
	TenantID string    `json:"tenantID"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ApproverRole maps to the approver_roles table.
type ApproverRole struct {
	TenantID  string    `json:"tenantID"`
	UserID    string    `json:"userID"`
	Role      string    `json:"role"`
	GrantedBy string    `json:"grantedBy"`
	GrantedAt time.Time `json:"grantedAt"`
}

// RoleDelegation maps to the role_delegations table.
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
