package domain

import (
	"fmt"
	"time"
)

// FiscalPeriod is a bounded date range postings fall into. A closed period
// rejects new postings; close/reopen are privileged operations.
type FiscalPeriod struct {
	PeriodID     string    `json:"periodID"` // Primary Key (UUID)
	TenantID     string    `json:"tenantID"` // FK -> tenants.tenant_id (NOT NULL)
	FiscalYear   int       `json:"fiscalYear"`
	PeriodNumber int       `json:"periodNumber"` // 1..12 (or 13 for an adjustment period)
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	IsClosed     bool      `json:"isClosed"`
	AuditFields
}

// Key returns the sequence period key for this period, e.g. "2026-04".
// Voucher numbers are unique within (tenant, document type, period key).
func (p FiscalPeriod) Key() string {
	return fmt.Sprintf("%d-%02d", p.FiscalYear, p.PeriodNumber)
}

// Contains reports whether the given date falls inside the period's range.
func (p FiscalPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}
