package services

import (
	"context"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/finpost/finpost_app/internal/core/validation"
	"github.com/finpost/finpost_app/internal/dto"
)

// VoucherReaderSvc defines read operations for voucher data
type VoucherReaderSvc interface {
	// GetVoucherByID retrieves a voucher with its lines (and steps when present).
	GetVoucherByID(ctx context.Context, tenantID, voucherID, requestingUserID string) (*domain.Voucher, error)

	// ListVouchers retrieves a token-paginated list of vouchers in a tenant.
	ListVouchers(ctx context.Context, tenantID, userID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)

	// ListAccountStatement retrieves the posted lines affecting one account.
	ListAccountStatement(ctx context.Context, tenantID, accountID, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// VoucherWriterSvc defines the posting engine's state transitions.
type VoucherWriterSvc interface {
	// CreateDraft persists a new draft voucher. Validation is advisory here:
	// the accumulated result is returned with the draft, but a draft may be
	// persisted even with validation errors, to support incremental editing.
	// This is the only transition where validation does not block.
	CreateDraft(ctx context.Context, tenantID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, validation.Result, error)

	// UpdateDraft replaces a draft's header fields and lines; advisory validation as above.
	UpdateDraft(ctx context.Context, tenantID, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, validation.Result, error)

	// SubmitForApproval runs strict validation; on failure the result is
	// returned with ErrValidation and the voucher is left untouched. On
	// success the voucher either enters approval routing or, when the
	// document type needs no approval, is posted directly.
	SubmitForApproval(ctx context.Context, tenantID, voucherID, userID string) (*domain.Voucher, validation.Result, error)

	// Post commits an APPROVED voucher (or a draft of a no-approval type):
	// strict re-validation, number acquisition and the atomic commit.
	Post(ctx context.Context, tenantID, voucherID, userID string) (*domain.Voucher, validation.Result, error)

	// Reverse creates the reversing voucher linked to the original and runs it
	// through the normal pipeline: into the approval chain when a rule matches,
	// posted immediately otherwise. The original flips to REVERSED only when
	// the reversal actually posts.
	Reverse(ctx context.Context, tenantID, voucherID, reason, userID string) (*domain.Voucher, error)

	// Cancel cancels a DRAFT or AWAITING_APPROVAL voucher. No ledger effect.
	Cancel(ctx context.Context, tenantID, voucherID, userID string) error
}

// VoucherPoster is the narrow posting trigger the approval workflow uses to
// post a voucher automatically after its final approval.
type VoucherPoster interface {
	// PostApproved posts an APPROVED voucher on behalf of the final approver.
	PostApproved(ctx context.Context, tenantID, voucherID, actorID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces.
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
	VoucherPoster
}
