package domain

import (
	"encoding/json"
	"time"
)

// AuditAction names the state transition an audit entry records.
type AuditAction string

const (
	AuditCreated        AuditAction = "created"
	AuditUpdated        AuditAction = "updated"
	AuditSubmitted      AuditAction = "submitted"
	AuditStepApproved   AuditAction = "step_approved"
	AuditStepRejected   AuditAction = "step_rejected"
	AuditEscalated      AuditAction = "escalated"
	AuditApproved       AuditAction = "approved"
	AuditPosted         AuditAction = "posted"
	AuditReversed       AuditAction = "reversed"
	AuditCancelled      AuditAction = "cancelled"
	AuditPeriodClosed   AuditAction = "period_closed"
	AuditPeriodReopened AuditAction = "period_reopened"
)

// Subject types referenced by audit entries.
const (
	SubjectVoucher      = "voucher"
	SubjectApprovalStep = "approval_step"
	SubjectFiscalPeriod = "fiscal_period"
	SubjectUser         = "user"
)

// AuditEntry is one immutable record in the audit log. Entries are append-only,
// written in the same database transaction as the transition they record.
type AuditEntry struct {
	AuditID     string          `json:"auditID"`  // Primary Key (UUID)
	TenantID    string          `json:"tenantID"` // FK -> tenants.tenant_id (NOT NULL)
	SubjectType string          `json:"subjectType"` // "voucher", "approval_step", "fiscal_period", ...
	SubjectID   string          `json:"subjectID"`
	Action      AuditAction     `json:"action"`
	ActorID     string          `json:"actorID"`
	Detail      json.RawMessage `json:"detail,omitempty"` // Before/after snapshot or context
	CreatedAt   time.Time       `json:"createdAt"`
}
