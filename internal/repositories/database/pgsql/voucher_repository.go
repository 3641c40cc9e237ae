package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	"github.com/finpost/finpost_app/internal/models"
	"github.com/finpost/finpost_app/internal/utils/mapping"
	"github.com/finpost/finpost_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxVoucherRepository struct {
	BaseRepository
	accountRepo  portsrepo.AccountRepositoryFacade
	sequenceRepo portsrepo.SequenceRepository
	auditRepo    portsrepo.AuditRepositoryFacade
}

// newPgxVoucherRepository creates a new repository for voucher and line data.
func newPgxVoucherRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, sequenceRepo portsrepo.SequenceRepository, auditRepo portsrepo.AuditRepositoryFacade) portsrepo.VoucherRepositoryWithTx {
	return &PgxVoucherRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		sequenceRepo:   sequenceRepo,
		auditRepo:      auditRepo,
	}
}

// Ensure PgxVoucherRepository implements portsrepo.VoucherRepositoryWithTx
var _ portsrepo.VoucherRepositoryWithTx = (*PgxVoucherRepository)(nil)

const voucherColumns = `voucher_id, tenant_id, doc_type_id, period_id, voucher_number, voucher_date, reference, description, status, reversal_of_id, reversed_by_id, amount, posted_at, created_at, created_by, last_updated_at, last_updated_by`

const voucherLineColumns = `line_id, voucher_id, tenant_id, line_number, account_id, debit, credit, description, cost_center, created_at, created_by, last_updated_at, last_updated_by`

func scanVoucher(row pgx.Row) (models.Voucher, error) {
	var m models.Voucher
	err := row.Scan(
		&m.VoucherID,
		&m.TenantID,
		&m.DocTypeID,
		&m.PeriodID,
		&m.VoucherNumber,
		&m.VoucherDate,
		&m.Reference,
		&m.Description,
		&m.Status,
		&m.ReversalOfID,
		&m.ReversedByID,
		&m.Amount,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanVoucherLine(row pgx.Row) (models.VoucherLine, error) {
	var m models.VoucherLine
	err := row.Scan(
		&m.LineID,
		&m.VoucherID,
		&m.TenantID,
		&m.LineNumber,
		&m.AccountID,
		&m.Debit,
		&m.Credit,
		&m.Description,
		&m.CostCenter,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// insertVoucherInTx inserts a voucher header on the caller's transaction.
func (r *PgxVoucherRepository) insertVoucherInTx(ctx context.Context, tx pgx.Tx, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	query := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, query,
		m.VoucherID,
		m.TenantID,
		m.DocTypeID,
		m.PeriodID,
		m.VoucherNumber,
		m.VoucherDate,
		m.Reference,
		m.Description,
		m.Status,
		m.ReversalOfID,
		m.ReversedByID,
		m.Amount,
		m.PostedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: voucher %s already exists", apperrors.ErrDuplicate, m.VoucherID)
		}
		return fmt.Errorf("failed to insert voucher %s: %w", m.VoucherID, err)
	}
	return nil
}

// insertLinesInTx batch-inserts voucher lines on the caller's transaction.
func (r *PgxVoucherRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.VoucherLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO voucher_lines (` + voucherLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelVoucherLine(line)
		batch.Queue(query,
			m.LineID,
			m.VoucherID,
			m.TenantID,
			m.LineNumber,
			m.AccountID,
			m.Debit,
			m.Credit,
			m.Description,
			m.CostCenter,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute voucher line batch: %w", err)
	}
	return nil
}

// SaveVoucher persists a new draft voucher, its lines and the creation audit
// entry in one transaction.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher, lines []domain.VoucherLine, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertVoucherInTx(ctx, tx, voucher); err != nil {
		return err
	}
	if err := r.insertLinesInTx(ctx, tx, lines); err != nil {
		return err
	}
	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateDraft replaces a draft voucher's header fields and full line set. The
// status precondition in the header update keeps a concurrently submitted
// voucher from being edited underneath its approval chain.
func (r *PgxVoucherRepository) UpdateDraft(ctx context.Context, voucher domain.Voucher, lines []domain.VoucherLine, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelVoucher(voucher)
	headerQuery := `
		UPDATE vouchers
		SET period_id = $3, voucher_date = $4, reference = $5, description = $6, amount = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $10;
	`
	cmdTag, err := tx.Exec(ctx, headerQuery,
		m.TenantID,
		m.VoucherID,
		m.PeriodID,
		m.VoucherDate,
		m.Reference,
		m.Description,
		m.Amount,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		string(domain.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to update draft voucher %s: %w", m.VoucherID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notFoundOrStateConflict(ctx, tx, m.TenantID, m.VoucherID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM voucher_lines WHERE tenant_id = $1 AND voucher_id = $2;`, m.TenantID, m.VoucherID); err != nil {
		return fmt.Errorf("failed to delete lines of draft voucher %s: %w", m.VoucherID, err)
	}
	if err := r.insertLinesInTx(ctx, tx, lines); err != nil {
		return err
	}
	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// notFoundOrStateConflict disambiguates a zero-row optimistic update: the
// voucher either does not exist in the tenant or is not in the expected state.
func (r *PgxVoucherRepository) notFoundOrStateConflict(ctx context.Context, tx pgx.Tx, tenantID, voucherID string) error {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vouchers WHERE tenant_id = $1 AND voucher_id = $2);`, tenantID, voucherID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check voucher %s after zero-row update: %w", voucherID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrStateConflict
}

// UpdateVoucherStatusInTx transitions a voucher's status on the caller's
// transaction with an optimistic precondition on the current status.
func (r *PgxVoucherRepository) UpdateVoucherStatusInTx(ctx context.Context, tx pgx.Tx, tenantID, voucherID string, from, to domain.VoucherStatus, actorID string, at time.Time) error {
	query := `
		UPDATE vouchers
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, query, tenantID, voucherID, string(to), at, actorID, string(from))
	if err != nil {
		return fmt.Errorf("failed to transition voucher %s from %s to %s: %w", voucherID, from, to, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notFoundOrStateConflict(ctx, tx, tenantID, voucherID)
	}
	return nil
}

// UpdateVoucherStatus transitions a voucher's status and writes the audit entry
// in one transaction.
func (r *PgxVoucherRepository) UpdateVoucherStatus(ctx context.Context, tenantID, voucherID string, from, to domain.VoucherStatus, actorID string, at time.Time, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.UpdateVoucherStatusInTx(ctx, tx, tenantID, voucherID, from, to, actorID, at); err != nil {
		return err
	}
	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// PostVoucher commits a posting in one transaction: the optimistic status flip,
// the sequence increment, number assignment, balance deltas under row locks and
// the audit entry. If anything fails the whole transaction rolls back, sequence
// increment included, so no number is burned by a failed post.
func (r *PgxVoucherRepository) PostVoucher(ctx context.Context, voucher domain.Voucher, from domain.VoucherStatus, periodKey string, balanceChanges map[string]decimal.Decimal, audit domain.AuditEntry) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelVoucher(voucher)
	now := m.LastUpdatedAt
	actorID := m.LastUpdatedBy

	// Flip the status first so a state conflict fails before the sequence row
	// lock is ever taken.
	flipQuery := `
		UPDATE vouchers
		SET status = $3, period_id = $4, posted_at = $5, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $7;
	`
	cmdTag, err := tx.Exec(ctx, flipQuery,
		m.TenantID,
		m.VoucherID,
		string(domain.StatusPosted),
		m.PeriodID,
		now,
		actorID,
		string(from),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to post voucher %s: %w", m.VoucherID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return 0, r.notFoundOrStateConflict(ctx, tx, m.TenantID, m.VoucherID)
	}

	number, err := r.sequenceRepo.NextNumberInTx(ctx, tx, m.TenantID, m.DocTypeID, periodKey)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `UPDATE vouchers SET voucher_number = $3 WHERE tenant_id = $1 AND voucher_id = $2;`, m.TenantID, m.VoucherID, number); err != nil {
		return 0, fmt.Errorf("failed to assign number %d to voucher %s: %w", number, m.VoucherID, err)
	}

	if err := r.applyBalanceChangesInTx(ctx, tx, m.TenantID, balanceChanges, actorID, now); err != nil {
		return 0, err
	}
	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return 0, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return number, nil
}

// ReverseVoucher posts an already-persisted reversal voucher and flips the
// original to REVERSED in one transaction. The reversal takes its own number
// from the sequence of the period it is dated into.
func (r *PgxVoucherRepository) ReverseVoucher(ctx context.Context, original domain.Voucher, reversal domain.Voucher, from domain.VoucherStatus, periodKey string, balanceChanges map[string]decimal.Decimal, audits []domain.AuditEntry) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelVoucher(reversal)
	now := m.LastUpdatedAt
	actorID := m.LastUpdatedBy

	// Flip the original first; its status precondition is what makes two
	// concurrent reversals of the same voucher mutually exclusive.
	originalQuery := `
		UPDATE vouchers
		SET status = $3, reversed_by_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $7 AND reversed_by_id IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, originalQuery,
		original.TenantID,
		original.VoucherID,
		string(domain.StatusReversed),
		reversal.VoucherID,
		now,
		actorID,
		string(domain.StatusPosted),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark voucher %s reversed: %w", original.VoucherID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return 0, r.notFoundOrStateConflict(ctx, tx, original.TenantID, original.VoucherID)
	}

	reversalQuery := `
		UPDATE vouchers
		SET status = $3, period_id = $4, posted_at = $5, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $7;
	`
	rTag, err := tx.Exec(ctx, reversalQuery,
		m.TenantID,
		m.VoucherID,
		string(domain.StatusPosted),
		m.PeriodID,
		now,
		actorID,
		string(from),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to post reversal voucher %s: %w", m.VoucherID, err)
	}
	if rTag.RowsAffected() == 0 {
		return 0, r.notFoundOrStateConflict(ctx, tx, m.TenantID, m.VoucherID)
	}

	number, err := r.sequenceRepo.NextNumberInTx(ctx, tx, m.TenantID, m.DocTypeID, periodKey)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `UPDATE vouchers SET voucher_number = $3 WHERE tenant_id = $1 AND voucher_id = $2;`, m.TenantID, m.VoucherID, number); err != nil {
		return 0, fmt.Errorf("failed to assign number %d to reversal voucher %s: %w", number, m.VoucherID, err)
	}

	if err := r.applyBalanceChangesInTx(ctx, tx, m.TenantID, balanceChanges, actorID, now); err != nil {
		return 0, err
	}
	for _, audit := range audits {
		if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
			return 0, err
		}
	}
	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return number, nil
}

// applyBalanceChangesInTx locks the affected account rows and applies the deltas.
func (r *PgxVoucherRepository) applyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, tenantID string, balanceChanges map[string]decimal.Decimal, actorID string, at time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, tenantID, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for balance update: %w", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, tenantID, balanceChanges, actorID, at); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return nil
}

// FindVoucherByID retrieves a voucher header by its identifier, scoped to the tenant.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, tenantID, voucherID string) (*domain.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE tenant_id = $1 AND voucher_id = $2;
	`
	m, err := scanVoucher(r.Pool.QueryRow(ctx, query, tenantID, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find voucher by ID %s: %w", voucherID, err)
	}
	v := mapping.ToDomainVoucher(m)
	return &v, nil
}

// FindLinesByVoucherID retrieves all lines of a voucher in line-number order.
func (r *PgxVoucherRepository) FindLinesByVoucherID(ctx context.Context, tenantID, voucherID string) ([]domain.VoucherLine, error) {
	query := `
		SELECT ` + voucherLineColumns + `
		FROM voucher_lines
		WHERE tenant_id = $1 AND voucher_id = $2
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for voucher %s: %w", voucherID, err)
	}
	defer rows.Close()

	lines := []models.VoucherLine{}
	for rows.Next() {
		m, err := scanVoucherLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for voucher %s: %w", voucherID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for voucher %s: %w", voucherID, err)
	}
	return mapping.ToDomainVoucherLineSlice(lines), nil
}

// FindLinesByVoucherIDs retrieves lines for multiple vouchers, grouped by voucher ID.
func (r *PgxVoucherRepository) FindLinesByVoucherIDs(ctx context.Context, tenantID string, voucherIDs []string) (map[string][]domain.VoucherLine, error) {
	result := make(map[string][]domain.VoucherLine)
	if len(voucherIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + voucherLineColumns + `
		FROM voucher_lines
		WHERE tenant_id = $1 AND voucher_id = ANY($2)
		ORDER BY voucher_id, line_number;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, voucherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for voucher batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanVoucherLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row during batch fetch: %w", err)
		}
		result[m.VoucherID] = append(result[m.VoucherID], mapping.ToDomainVoucherLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows during batch fetch: %w", err)
	}
	return result, nil
}

// ListVouchersByTenant retrieves a keyset-paginated list of a tenant's vouchers,
// newest voucher date first, optionally filtered by status.
func (r *PgxVoucherRepository) ListVouchersByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, status *domain.VoucherStatus, includeReversals bool) ([]domain.Voucher, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}

	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if !includeReversals {
		query += ` AND reversal_of_id IS NULL`
	}
	if nextToken != nil && *nextToken != "" {
		voucherDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid voucher pagination token: %w", err)
		}
		args = append(args, voucherDate, createdAt)
		query += fmt.Sprintf(` AND (voucher_date, created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY voucher_date DESC, created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query vouchers for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	vouchers := []models.Voucher{}
	for rows.Next() {
		m, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan voucher row for tenant %s: %w", tenantID, err)
		}
		vouchers = append(vouchers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating voucher rows for tenant %s: %w", tenantID, err)
	}

	var next *string
	if len(vouchers) > limit {
		vouchers = vouchers[:limit]
		last := vouchers[len(vouchers)-1]
		token := pagination.EncodeToken(last.VoucherDate, last.CreatedAt)
		next = &token
	}

	out := make([]domain.Voucher, len(vouchers))
	for i, m := range vouchers {
		out[i] = mapping.ToDomainVoucher(m)
	}
	return out, next, nil
}

// ListPostedLinesByAccount retrieves the statement feed of one account: lines of
// vouchers that reached POSTED (including those later reversed, whose reversal
// lines appear too), newest voucher date first, keyset-paginated.
func (r *PgxVoucherRepository) ListPostedLinesByAccount(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.VoucherLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT l.line_id, l.voucher_id, l.tenant_id, l.line_number, l.account_id, l.debit, l.credit,
		       l.description, l.cost_center, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       v.voucher_date
		FROM voucher_lines l
		JOIN vouchers v ON v.tenant_id = l.tenant_id AND v.voucher_id = l.voucher_id
		WHERE l.tenant_id = $1 AND l.account_id = $2 AND v.status IN ($3, $4)
	`
	args := []interface{}{tenantID, accountID, string(domain.StatusPosted), string(domain.StatusReversed)}

	if nextToken != nil && *nextToken != "" {
		voucherDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid statement pagination token: %w", err)
		}
		args = append(args, voucherDate, createdAt)
		query += fmt.Sprintf(` AND (v.voucher_date, l.created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	query += fmt.Sprintf(` ORDER BY v.voucher_date DESC, l.created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query statement lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	type statementRow struct {
		line        models.VoucherLine
		voucherDate time.Time
	}
	collected := []statementRow{}
	for rows.Next() {
		var m models.VoucherLine
		var voucherDate time.Time
		err := rows.Scan(
			&m.LineID,
			&m.VoucherID,
			&m.TenantID,
			&m.LineNumber,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&m.Description,
			&m.CostCenter,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&voucherDate,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan statement line row for account %s: %w", accountID, err)
		}
		collected = append(collected, statementRow{line: m, voucherDate: voucherDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating statement line rows for account %s: %w", accountID, err)
	}

	var next *string
	if len(collected) > limit {
		collected = collected[:limit]
		last := collected[len(collected)-1]
		token := pagination.EncodeToken(last.voucherDate, last.line.CreatedAt)
		next = &token
	}

	out := make([]domain.VoucherLine, len(collected))
	for i, row := range collected {
		out[i] = mapping.ToDomainVoucherLine(row.line)
	}
	return out, next, nil
}
