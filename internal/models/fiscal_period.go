package models

import "time"

// FiscalPeriod maps to the fiscal_periods table.
type FiscalPeriod struct {
	PeriodID     string    `json:"periodID"`
	TenantID     string    `json:"tenantID"`
	FiscalYear   int       `json:"fiscalYear"`
	PeriodNumber int       `json:"periodNumber"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	IsClosed     bool      `json:"isClosed"`
	AuditFields
}
