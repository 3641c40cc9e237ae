package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finpost/finpost_app/internal/apperrors"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSequenceRepository struct {
	pool *pgxpool.Pool
}

// newPgxSequenceRepository creates a new repository for voucher number sequences.
func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepository {
	return &PgxSequenceRepository{pool: pool}
}

// Ensure PgxSequenceRepository implements portsrepo.SequenceRepository
var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextNumberInTx issues the next voucher number for (tenant, doc type, period key)
// on the caller's transaction. A single upsert-increment statement takes the row
// lock; two concurrent posters on the same key serialize here and never see the
// same number. If the surrounding transaction rolls back the increment rolls back
// too; a number lost after commit stays a gap and is never reissued.
func (r *PgxSequenceRepository) NextNumberInTx(ctx context.Context, tx pgx.Tx, tenantID, docTypeID, periodKey string) (int64, error) {
	query := `
		INSERT INTO sequences (tenant_id, doc_type_id, period_key, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, doc_type_id, period_key)
		DO UPDATE SET last_value = sequences.last_value + 1
		RETURNING last_value;
	`
	var next int64
	if err := tx.QueryRow(ctx, query, tenantID, docTypeID, periodKey).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to acquire next number for sequence %s/%s/%s: %w", tenantID, docTypeID, periodKey, err)
	}
	return next, nil
}

// CurrentNumber returns the last issued number for a sequence key, 0 if the
// sequence has not issued anything yet.
func (r *PgxSequenceRepository) CurrentNumber(ctx context.Context, tenantID, docTypeID, periodKey string) (int64, error) {
	query := `
		SELECT last_value
		FROM sequences
		WHERE tenant_id = $1 AND doc_type_id = $2 AND period_key = $3;
	`
	var current int64
	err := r.pool.QueryRow(ctx, query, tenantID, docTypeID, periodKey).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, apperrors.NewAppError(500, "failed to read sequence "+tenantID+"/"+docTypeID+"/"+periodKey, err)
	}
	return current, nil
}
