package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalMode determines how a rule's steps activate.
type ApprovalMode string

const (
	// Sequential activates steps one at a time, in step-number order.
	Sequential ApprovalMode = "SEQUENTIAL"
	// Parallel activates every step at once; all must be approved.
	Parallel ApprovalMode = "PARALLEL"
)

// ApprovalRule maps (tenant, document type, optional amount threshold) to an
// ordered list of required approver roles. Rules are configuration: the
// highest-priority active rule matching a voucher is snapshotted into
// ApprovalSteps at submission time, never re-resolved afterwards.
type ApprovalRule struct {
	RuleID    string           `json:"ruleID"`   // Primary Key (UUID)
	TenantID  string           `json:"tenantID"` // FK -> tenants.tenant_id (NOT NULL)
	DocTypeID string           `json:"docTypeID"`
	MinAmount *decimal.Decimal `json:"minAmount"` // nil = applies to any amount
	Mode      ApprovalMode     `json:"mode"`
	Roles     []string         `json:"roles"`    // Ordered required approver roles
	Priority  int              `json:"priority"` // Lower = evaluated first
	IsActive  bool             `json:"isActive"`
	AuditFields
}

// Matches reports whether the rule applies to a voucher of the given amount.
func (r ApprovalRule) Matches(amount decimal.Decimal) bool {
	if !r.IsActive {
		return false
	}
	if r.MinAmount != nil && amount.LessThan(*r.MinAmount) {
		return false
	}
	return true
}

// ApprovalStepStatus is the state of a single materialized approval step.
type ApprovalStepStatus string

const (
	StepPending   ApprovalStepStatus = "PENDING"
	StepApproved  ApprovalStepStatus = "APPROVED"
	StepRejected  ApprovalStepStatus = "REJECTED"
	StepCancelled ApprovalStepStatus = "CANCELLED"
)

// ApprovalStep is one required authorization action in a voucher's approval
// sequence, materialized from the matched rule at submission. The step list is
// the rule snapshot: a later rule change never affects an in-flight voucher.
// Steps are append-only history; once actioned they are never edited.
type ApprovalStep struct {
	StepID       string             `json:"stepID"`    // Primary Key (UUID)
	VoucherID    string             `json:"voucherID"` // FK -> vouchers.voucher_id
	TenantID     string             `json:"tenantID"`  // Denormalized tenant scope
	StepNumber   int                `json:"stepNumber"`
	RequiredRole string             `json:"requiredRole"`
	Mode         ApprovalMode       `json:"mode"` // Copied from the rule snapshot
	Status       ApprovalStepStatus `json:"status"`
	ActedBy      *string            `json:"actedBy"`
	ActedAt      *time.Time         `json:"actedAt"`
	Comment      string             `json:"comment"`
	// EscalatedAt is stamped when the scheduler escalates a pending step; the
	// step stays PENDING but RequiredRole is reassigned to the escalation role.
	EscalatedAt *time.Time `json:"escalatedAt"`
	AuditFields
}

// Actionable reports whether the step can still be approved or rejected.
func (s ApprovalStep) Actionable() bool {
	return s.Status == StepPending
}
