package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalRule maps to the approval_rules table. Roles is stored as a text[]
// column in chain order.
type ApprovalRule struct {
	RuleID    string           `json:"ruleID"`
	TenantID  string           `json:"tenantID"`
	DocTypeID string           `json:"docTypeID"`
	MinAmount *decimal.Decimal `json:"minAmount"`
	Mode      string           `json:"mode"`
	Roles     []string         `json:"roles"`
	Priority  int              `json:"priority"`
	IsActive  bool             `json:"isActive"`
	AuditFields
}

// ApprovalStep maps to the approval_steps table.
type ApprovalStep struct {
	StepID       string     `json:"stepID"`
	VoucherID    string     `json:"voucherID"`
	TenantID     string     `json:"tenantID"`
	StepNumber   int        `json:"stepNumber"`
	RequiredRole string     `json:"requiredRole"`
	Mode         string     `json:"mode"`
	Status       string     `json:"status"`
	ActedBy      *string    `json:"actedBy"`
	ActedAt      *time.Time `json:"actedAt"`
	Comment      string     `json:"comment"`
	EscalatedAt  *time.Time `json:"escalatedAt"`
	AuditFields
}
