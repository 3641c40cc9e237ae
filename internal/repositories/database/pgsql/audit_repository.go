package pgsql

import (
	"context"
	"fmt"

	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	"github.com/finpost/finpost_app/internal/models"
	"github.com/finpost/finpost_app/internal/utils/mapping"
	"github.com/finpost/finpost_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	pool *pgxpool.Pool
}

// newPgxAuditRepository creates a new repository for the append-only audit log.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{pool: pool}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

const auditInsertQuery = `
	INSERT INTO audit_entries (audit_id, tenant_id, subject_type, subject_id, action, actor_id, detail, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

// SaveEntry appends a single audit entry outside any caller transaction.
func (r *PgxAuditRepository) SaveEntry(ctx context.Context, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)
	_, err := r.pool.Exec(ctx, auditInsertQuery,
		m.AuditID, m.TenantID, m.SubjectType, m.SubjectID, m.Action, m.ActorID, m.Detail, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", m.AuditID, err)
	}
	return nil
}

// SaveEntryInTx appends an audit entry on the caller's transaction so the entry
// commits or rolls back together with the transition it records.
func (r *PgxAuditRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)
	_, err := tx.Exec(ctx, auditInsertQuery,
		m.AuditID, m.TenantID, m.SubjectType, m.SubjectID, m.Action, m.ActorID, m.Detail, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", m.AuditID, err)
	}
	return nil
}

// ListBySubject retrieves the audit trail of one subject, newest first, with
// keyset pagination on the creation timestamp.
func (r *PgxAuditRepository) ListBySubject(ctx context.Context, tenantID, subjectType, subjectID string, limit int, nextToken *string) ([]domain.AuditEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT audit_id, tenant_id, subject_type, subject_id, action, actor_id, detail, created_at
		FROM audit_entries
		WHERE tenant_id = $1 AND subject_type = $2 AND subject_id = $3
	`
	args := []interface{}{tenantID, subjectType, subjectID}

	if nextToken != nil && *nextToken != "" {
		before, err := pagination.DecodeDateBasedToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid audit pagination token: %w", err)
		}
		query += ` AND created_at < $4`
		args = append(args, before)
	}

	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query audit entries for %s %s: %w", subjectType, subjectID, err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(&m.AuditID, &m.TenantID, &m.SubjectType, &m.SubjectID, &m.Action, &m.ActorID, &m.Detail, &m.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan audit entry row: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating audit entry rows: %w", err)
	}

	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		token := pagination.EncodeDateBasedToken(entries[len(entries)-1].CreatedAt)
		next = &token
	}

	out := make([]domain.AuditEntry, len(entries))
	for i, m := range entries {
		out[i] = mapping.ToDomainAuditEntry(m)
	}
	return out, next, nil
}
