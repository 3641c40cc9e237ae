package models

import (
	"encoding/json"
	"time"
)

// AuditEntry maps to the audit_entries table. Rows are append-only.
type AuditEntry struct {
	AuditID     string          `json:"auditID"`
	TenantID    string          `json:"tenantID"`
	SubjectType string          `json:"subjectType"`
	SubjectID   string          `json:"subjectID"`
	Action      string          `json:"action"`
	ActorID     string          `json:"actorID"`
	Detail      json.RawMessage `json:"detail"`
	CreatedAt   time.Time       `json:"createdAt"`
}
