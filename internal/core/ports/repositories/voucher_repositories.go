package repositories

import (
	"context"
	"time"

	"github.com/finpost/finpost_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// VoucherReader defines read operations for voucher data. Every method is
// tenant-scoped: a voucher belonging to a different tenant is reported as not found.
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher header by its identifier.
	FindVoucherByID(ctx context.Context, tenantID, voucherID string) (*domain.Voucher, error)

	// FindLinesByVoucherID retrieves all lines of a voucher in line-number order.
	FindLinesByVoucherID(ctx context.Context, tenantID, voucherID string) ([]domain.VoucherLine, error)

	// FindLinesByVoucherIDs retrieves lines for multiple vouchers, grouped by voucher ID.
	FindLinesByVoucherIDs(ctx context.Context, tenantID string, voucherIDs []string) (map[string][]domain.VoucherLine, error)

	// ListVouchersByTenant retrieves a token-paginated list of vouchers,
	// optionally filtered by status.
	ListVouchersByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, status *domain.VoucherStatus, includeReversals bool) ([]domain.Voucher, *string, error)

	// ListPostedLinesByAccount retrieves a token-paginated statement of posted
	// lines affecting one account; the immutable feed the reporting layer reads.
	ListPostedLinesByAccount(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.VoucherLine, *string, error)
}

// VoucherWriter defines write operations for voucher data.
type VoucherWriter interface {
	// SaveVoucher persists a new draft voucher with its lines and the creation
	// audit entry in one transaction.
	SaveVoucher(ctx context.Context, voucher domain.Voucher, lines []domain.VoucherLine, audit domain.AuditEntry) error

	// UpdateDraft replaces a draft voucher's header fields and full line set.
	// Fails with ErrStateConflict if the voucher is no longer a draft.
	UpdateDraft(ctx context.Context, voucher domain.Voucher, lines []domain.VoucherLine, audit domain.AuditEntry) error

	// UpdateVoucherStatus transitions a voucher from one status to another with
	// an optimistic status precondition; zero rows affected means the voucher
	// was not in the expected state.
	UpdateVoucherStatus(ctx context.Context, tenantID, voucherID string, from, to domain.VoucherStatus, actorID string, at time.Time, audit domain.AuditEntry) error

	// UpdateVoucherStatusInTx is UpdateVoucherStatus on a caller-owned transaction.
	UpdateVoucherStatusInTx(ctx context.Context, tx pgx.Tx, tenantID, voucherID string, from, to domain.VoucherStatus, actorID string, at time.Time) error

	// PostVoucher commits a posting in one transaction: status precondition
	// check, sequence number acquisition, number assignment, account balance
	// deltas under row locks, and the audit entry. Returns the assigned number.
	PostVoucher(ctx context.Context, voucher domain.Voucher, from domain.VoucherStatus, periodKey string, balanceChanges map[string]decimal.Decimal, audit domain.AuditEntry) (int64, error)

	// ReverseVoucher posts an already-persisted reversal voucher and flips the
	// original to REVERSED in one transaction: the original's optimistic
	// POSTED-and-unreversed precondition, the reversal's own flip from the
	// given status, number assignment and balance deltas commit or roll back
	// together. Returns the reversal's assigned number.
	ReverseVoucher(ctx context.Context, original domain.Voucher, reversal domain.Voucher, from domain.VoucherStatus, periodKey string, balanceChanges map[string]decimal.Decimal, audits []domain.AuditEntry) (int64, error)
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces.
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}

// VoucherRepositoryWithTx extends VoucherRepositoryFacade with transaction capabilities.
type VoucherRepositoryWithTx interface {
	VoucherRepositoryFacade
	TransactionManager
}
