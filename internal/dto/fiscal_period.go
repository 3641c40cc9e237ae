package dto

import (
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
)

// CreatePeriodRequest defines data for creating a fiscal period.
type CreatePeriodRequest struct {
	FiscalYear   int       `json:"fiscalYear" binding:"required"`
	PeriodNumber int       `json:"periodNumber" binding:"required,min=1,max=13"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
}

// PeriodResponse defines data returned for a fiscal period.
type PeriodResponse struct {
	PeriodID     string    `json:"periodID"`
	TenantID     string    `json:"tenantID"`
	FiscalYear   int       `json:"fiscalYear"`
	PeriodNumber int       `json:"periodNumber"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	IsClosed     bool      `json:"isClosed"`
}

// ToPeriodResponse converts domain.FiscalPeriod to DTO.
func ToPeriodResponse(p *domain.FiscalPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:     p.PeriodID,
		TenantID:     p.TenantID,
		FiscalYear:   p.FiscalYear,
		PeriodNumber: p.PeriodNumber,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		IsClosed:     p.IsClosed,
	}
}

// ListPeriodsParams holds filters for listing fiscal periods.
type ListPeriodsParams struct {
	FiscalYear int `form:"fiscalYear"`
}

// ListPeriodsResponse wraps a list of fiscal periods.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}

// ToListPeriodsResponse converts a slice of domain.FiscalPeriod to DTO.
func ToListPeriodsResponse(ps []domain.FiscalPeriod) ListPeriodsResponse {
	list := make([]PeriodResponse, len(ps))
	for i, p := range ps {
		list[i] = ToPeriodResponse(&p)
	}
	return ListPeriodsResponse{Periods: list}
}
