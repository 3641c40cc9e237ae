package dto

import (
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/core/validation"
	"github.com/shopspring/decimal"
)

// --- Voucher DTOs ---

// CreateVoucherLineRequest defines one line of a voucher being created or replaced.
type CreateVoucherLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
}

// CreateVoucherRequest defines data for creating a new draft voucher.
type CreateVoucherRequest struct {
	DocTypeID   string                     `json:"docTypeID" binding:"required"`
	VoucherDate time.Time                  `json:"voucherDate" binding:"required"`
	Reference   string                     `json:"reference"`
	Description string                     `json:"description"`
	Lines       []CreateVoucherLineRequest `json:"lines" binding:"required,dive"`
}

// UpdateVoucherRequest replaces a draft's header fields and lines.
type UpdateVoucherRequest struct {
	VoucherDate *time.Time                 `json:"voucherDate,omitempty"`
	Reference   *string                    `json:"reference,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Lines       []CreateVoucherLineRequest `json:"lines" binding:"omitempty,dive"`
}

// ReverseVoucherRequest carries the reason for reversing a posted voucher.
type ReverseVoucherRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListVouchersParams holds filters for listing vouchers.
type ListVouchersParams struct {
	Status           *domain.VoucherStatus `form:"status" binding:"omitempty,oneof=DRAFT AWAITING_APPROVAL APPROVED POSTED REVERSED CANCELLED"`
	IncludeReversals bool                  `form:"includeReversals"`
	Limit            int                   `form:"limit"`
	NextToken        string                `form:"nextToken"`
}

// ListLinesParams holds pagination parameters for account statements.
type ListLinesParams struct {
	Limit     int    `form:"limit"`
	NextToken string `form:"nextToken"`
}

// VoucherLineResponse defines the data returned for a voucher line.
type VoucherLineResponse struct {
	LineID      string          `json:"lineID"`
	VoucherID   string          `json:"voucherID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	CostCenter  string          `json:"costCenter,omitempty"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID     string                `json:"voucherID"`
	TenantID      string                `json:"tenantID"`
	DocTypeID     string                `json:"docTypeID"`
	PeriodID      string                `json:"periodID,omitempty"`
	VoucherNumber *int64                `json:"voucherNumber,omitempty"`
	VoucherDate   time.Time             `json:"voucherDate"`
	Reference     string                `json:"reference,omitempty"`
	Description   string                `json:"description,omitempty"`
	Status        domain.VoucherStatus  `json:"status"`
	ReversalOfID  *string               `json:"reversalOfID,omitempty"`
	ReversedByID  *string               `json:"reversedByID,omitempty"`
	Amount        decimal.Decimal       `json:"amount"`
	PostedAt      *time.Time            `json:"postedAt,omitempty"`
	Lines         []VoucherLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
	LastUpdatedAt time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy string                `json:"lastUpdatedBy"`
}

// ListVouchersResponse wraps a paginated list of vouchers.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListLinesResponse wraps a paginated list of voucher lines.
type ListLinesResponse struct {
	Lines     []VoucherLineResponse `json:"lines"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ValidationIssue is one accumulated validation failure.
type ValidationIssue struct {
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VoucherWithValidationResponse pairs a voucher with its validation result,
// returned by draft writes where validation is advisory.
type VoucherWithValidationResponse struct {
	Voucher          VoucherResponse   `json:"voucher"`
	ValidationErrors []ValidationIssue `json:"validationErrors,omitempty"`
}

// ValidationErrorResponse is the body returned when strict validation blocks
// a transition.
type ValidationErrorResponse struct {
	Error            string            `json:"error"`
	ValidationErrors []ValidationIssue `json:"validationErrors"`
}

// ToVoucherLineResponse converts a domain.VoucherLine to DTO.
func ToVoucherLineResponse(l *domain.VoucherLine) VoucherLineResponse {
	return VoucherLineResponse{
		LineID:      l.LineID,
		VoucherID:   l.VoucherID,
		LineNumber:  l.LineNumber,
		AccountID:   l.AccountID,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Description: l.Description,
		CostCenter:  l.CostCenter,
	}
}

// ToVoucherLineResponses converts a slice of domain.VoucherLine to DTOs.
func ToVoucherLineResponses(lines []domain.VoucherLine) []VoucherLineResponse {
	responses := make([]VoucherLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = ToVoucherLineResponse(&l)
	}
	return responses
}

// ToVoucherResponse converts a domain.Voucher to DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	return VoucherResponse{
		VoucherID:     v.VoucherID,
		TenantID:      v.TenantID,
		DocTypeID:     v.DocTypeID,
		PeriodID:      v.PeriodID,
		VoucherNumber: v.VoucherNumber,
		VoucherDate:   v.VoucherDate,
		Reference:     v.Reference,
		Description:   v.Description,
		Status:        v.Status,
		ReversalOfID:  v.ReversalOfID,
		ReversedByID:  v.ReversedByID,
		Amount:        v.Amount,
		PostedAt:      v.PostedAt,
		Lines:         ToVoucherLineResponses(v.Lines),
		CreatedAt:     v.CreatedAt,
		CreatedBy:     v.CreatedBy,
		LastUpdatedAt: v.LastUpdatedAt,
		LastUpdatedBy: v.LastUpdatedBy,
	}
}

// ToVoucherResponses converts a slice of domain.Voucher to DTOs.
func ToVoucherResponses(vs []domain.Voucher) []VoucherResponse {
	responses := make([]VoucherResponse, len(vs))
	for i, v := range vs {
		responses[i] = ToVoucherResponse(&v)
	}
	return responses
}

// ToValidationIssues converts accumulated validation errors to DTOs.
func ToValidationIssues(result validation.Result) []ValidationIssue {
	if result.OK() {
		return nil
	}
	issues := make([]ValidationIssue, len(result.Errors))
	for i, e := range result.Errors {
		issues[i] = ValidationIssue{
			Line:    e.Line,
			Field:   e.Field,
			Code:    e.Code,
			Message: e.Message,
		}
	}
	return issues
}
