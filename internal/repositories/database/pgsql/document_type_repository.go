package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finpost/finpost_app/internal/apperrors"
	"github.com/finpost/finpost_app/internal/core/domain"
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	"github.com/finpost/finpost_app/internal/models"
	"github.com/finpost/finpost_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDocumentTypeRepository struct {
	pool *pgxpool.Pool
}

// newPgxDocumentTypeRepository creates a new repository for document type configuration.
func newPgxDocumentTypeRepository(pool *pgxpool.Pool) portsrepo.DocumentTypeRepositoryFacade {
	return &PgxDocumentTypeRepository{pool: pool}
}

// Ensure PgxDocumentTypeRepository implements portsrepo.DocumentTypeRepositoryFacade
var _ portsrepo.DocumentTypeRepositoryFacade = (*PgxDocumentTypeRepository)(nil)

const documentTypeColumns = `doc_type_id, tenant_id, code, name, number_prefix, requires_approval, restrict_account_types, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanDocumentType(row pgx.Row) (models.DocumentType, error) {
	var m models.DocumentType
	err := row.Scan(
		&m.DocTypeID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.NumberPrefix,
		&m.RequiresApproval,
		&m.RestrictAccountTypes,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveDocumentType inserts a new document type.
func (r *PgxDocumentTypeRepository) SaveDocumentType(ctx context.Context, docType domain.DocumentType) error {
	m := mapping.ToModelDocumentType(docType)
	query := `
		INSERT INTO document_types (` + documentTypeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		m.DocTypeID,
		m.TenantID,
		m.Code,
		m.Name,
		m.NumberPrefix,
		m.RequiresApproval,
		m.RestrictAccountTypes,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: document type with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save document type %s: %w", m.DocTypeID, err)
	}
	return nil
}

// FindDocumentTypeByID retrieves a document type within a tenant.
func (r *PgxDocumentTypeRepository) FindDocumentTypeByID(ctx context.Context, tenantID, docTypeID string) (*domain.DocumentType, error) {
	query := `
		SELECT ` + documentTypeColumns + `
		FROM document_types
		WHERE tenant_id = $1 AND doc_type_id = $2;
	`
	m, err := scanDocumentType(r.pool.QueryRow(ctx, query, tenantID, docTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document type by ID %s: %w", docTypeID, err)
	}
	dt := mapping.ToDomainDocumentType(m)
	return &dt, nil
}

// ListDocumentTypes retrieves a tenant's document types ordered by code.
func (r *PgxDocumentTypeRepository) ListDocumentTypes(ctx context.Context, tenantID string) ([]domain.DocumentType, error) {
	query := `
		SELECT ` + documentTypeColumns + `
		FROM document_types
		WHERE tenant_id = $1
		ORDER BY code;
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query document types for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	docTypes := []domain.DocumentType{}
	for rows.Next() {
		m, err := scanDocumentType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document type row: %w", err)
		}
		docTypes = append(docTypes, mapping.ToDomainDocumentType(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document type rows: %w", err)
	}
	return docTypes, nil
}

// UpdateDocumentType updates a document type's mutable fields. Code and number
// prefix are immutable so issued voucher numbers keep their meaning.
func (r *PgxDocumentTypeRepository) UpdateDocumentType(ctx context.Context, docType domain.DocumentType) error {
	m := mapping.ToModelDocumentType(docType)
	query := `
		UPDATE document_types
		SET name = $3, requires_approval = $4, restrict_account_types = $5, is_active = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE tenant_id = $1 AND doc_type_id = $2;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.TenantID,
		m.DocTypeID,
		m.Name,
		m.RequiresApproval,
		m.RestrictAccountTypes,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update document type %s: %w", m.DocTypeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
