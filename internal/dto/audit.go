package dto

import (
	"encoding/json"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
)

// AuditEntryResponse defines data returned for one audit trail entry.
type AuditEntryResponse struct {
	AuditID     string             `json:"auditID"`
	TenantID    string             `json:"tenantID"`
	SubjectType string             `json:"subjectType"`
	SubjectID   string             `json:"subjectID"`
	Action      domain.AuditAction `json:"action"`
	ActorID     string             `json:"actorID"`
	Detail      json.RawMessage    `json:"detail,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ToAuditEntryResponse converts domain.AuditEntry to DTO.
func ToAuditEntryResponse(e *domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		AuditID:     e.AuditID,
		TenantID:    e.TenantID,
		SubjectType: e.SubjectType,
		SubjectID:   e.SubjectID,
		Action:      e.Action,
		ActorID:     e.ActorID,
		Detail:      e.Detail,
		CreatedAt:   e.CreatedAt,
	}
}

// ListAuditEntriesResponse wraps a subject's audit trail.
type ListAuditEntriesResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}

// ToListAuditEntriesResponse converts a slice of domain.AuditEntry to DTO.
func ToListAuditEntriesResponse(entries []domain.AuditEntry) ListAuditEntriesResponse {
	list := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		list[i] = ToAuditEntryResponse(&e)
	}
	return ListAuditEntriesResponse{Entries: list}
}
