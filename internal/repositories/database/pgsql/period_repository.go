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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPeriodRepository struct {
	BaseRepository
	auditRepo portsrepo.AuditRepositoryFacade
}

// newPgxPeriodRepository creates a new repository for fiscal periods.
func newPgxPeriodRepository(pool *pgxpool.Pool, auditRepo portsrepo.AuditRepositoryFacade) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
		auditRepo:      auditRepo,
	}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryFacade
var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

const periodColumns = `period_id, tenant_id, fiscal_year, period_number, start_date, end_date, is_closed, created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (models.FiscalPeriod, error) {
	var m models.FiscalPeriod
	err := row.Scan(
		&m.PeriodID,
		&m.TenantID,
		&m.FiscalYear,
		&m.PeriodNumber,
		&m.StartDate,
		&m.EndDate,
		&m.IsClosed,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePeriod inserts a new fiscal period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	m := mapping.ToModelFiscalPeriod(period)
	query := `
		INSERT INTO fiscal_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PeriodID,
		m.TenantID,
		m.FiscalYear,
		m.PeriodNumber,
		m.StartDate,
		m.EndDate,
		m.IsClosed,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: period %d-%d already exists", apperrors.ErrDuplicate, m.FiscalYear, m.PeriodNumber)
		}
		return fmt.Errorf("failed to save fiscal period %s: %w", m.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves a fiscal period within a tenant.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1 AND period_id = $2;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fiscal period by ID %s: %w", periodID, err)
	}
	p := mapping.ToDomainFiscalPeriod(m)
	return &p, nil
}

// FindPeriodByDate retrieves the fiscal period whose range covers the given date.
func (r *PgxPeriodRepository) FindPeriodByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY period_number
		LIMIT 1;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fiscal period for date %s: %w", date.Format("2006-01-02"), err)
	}
	p := mapping.ToDomainFiscalPeriod(m)
	return &p, nil
}

// ListPeriods retrieves a tenant's periods, optionally filtered by fiscal year.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, tenantID string, fiscalYear int) ([]domain.FiscalPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	if fiscalYear > 0 {
		args = append(args, fiscalYear)
		query += ` AND fiscal_year = $2`
	}
	query += ` ORDER BY fiscal_year, period_number;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal periods for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	periods := []domain.FiscalPeriod{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period row: %w", err)
		}
		periods = append(periods, mapping.ToDomainFiscalPeriod(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal period rows: %w", err)
	}
	return periods, nil
}

// SetPeriodClosed flips the closed flag and writes the audit entry in one
// transaction. The flag precondition makes closing an already-closed period
// (or reopening an open one) fail with ErrStateConflict.
func (r *PgxPeriodRepository) SetPeriodClosed(ctx context.Context, tenantID, periodID string, closed bool, actorID string, at time.Time, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE fiscal_periods
		SET is_closed = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND period_id = $2 AND is_closed = $6;
	`
	cmdTag, err := tx.Exec(ctx, query, tenantID, periodID, closed, at, actorID, !closed)
	if err != nil {
		return fmt.Errorf("failed to set closed flag on fiscal period %s: %w", periodID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fiscal_periods WHERE tenant_id = $1 AND period_id = $2);`, tenantID, periodID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check fiscal period %s after zero-row update: %w", periodID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrStateConflict
	}

	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
