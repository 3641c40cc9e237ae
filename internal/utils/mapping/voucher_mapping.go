package mapping

import (
	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/models"
)

// ToModelVoucher converts a domain Voucher to a model Voucher.
func ToModelVoucher(d domain.Voucher) models.Voucher {
	m := models.Voucher{
		VoucherID:     d.VoucherID,
		TenantID:      d.TenantID,
		DocTypeID:     d.DocTypeID,
		VoucherNumber: d.VoucherNumber,
		VoucherDate:   d.VoucherDate,
		Reference:     d.Reference,
		Description:   d.Description,
		Status:        string(d.Status),
		ReversalOfID:  d.ReversalOfID,
		ReversedByID:  d.ReversedByID,
		Amount:        d.Amount,
		PostedAt:      d.PostedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	if d.PeriodID != "" {
		periodID := d.PeriodID
		m.PeriodID = &periodID
	}
	return m
}

// ToDomainVoucher converts a model Voucher to a domain Voucher.
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	d := domain.Voucher{
		VoucherID:     m.VoucherID,
		TenantID:      m.TenantID,
		DocTypeID:     m.DocTypeID,
		VoucherNumber: m.VoucherNumber,
		VoucherDate:   m.VoucherDate,
		Reference:     m.Reference,
		Description:   m.Description,
		Status:        domain.VoucherStatus(m.Status),
		ReversalOfID:  m.ReversalOfID,
		ReversedByID:  m.ReversedByID,
		Amount:        m.Amount,
		PostedAt:      m.PostedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
	if m.PeriodID != nil {
		d.PeriodID = *m.PeriodID
	}
	return d
}

// ToModelVoucherLine converts a domain VoucherLine to a model VoucherLine.
func ToModelVoucherLine(d domain.VoucherLine) models.VoucherLine {
	return models.VoucherLine{
		LineID:      d.LineID,
		VoucherID:   d.VoucherID,
		TenantID:    d.TenantID,
		LineNumber:  d.LineNumber,
		AccountID:   d.AccountID,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: d.Description,
		CostCenter:  d.CostCenter,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVoucherLine converts a model VoucherLine to a domain VoucherLine.
func ToDomainVoucherLine(m models.VoucherLine) domain.VoucherLine {
	return domain.VoucherLine{
		LineID:      m.LineID,
		VoucherID:   m.VoucherID,
		TenantID:    m.TenantID,
		LineNumber:  m.LineNumber,
		AccountID:   m.AccountID,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		CostCenter:  m.CostCenter,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainVoucherLineSlice converts a slice of model lines to domain lines.
func ToDomainVoucherLineSlice(ms []models.VoucherLine) []domain.VoucherLine {
	lines := make([]domain.VoucherLine, len(ms))
	for i, m := range ms {
		lines[i] = ToDomainVoucherLine(m)
	}
	return lines
}
