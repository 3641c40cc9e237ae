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

type PgxTenantRepository struct {
	BaseRepository
}

// newPgxTenantRepository creates a new repository for tenants, memberships,
// approver roles and delegations.
func newPgxTenantRepository(pool *pgxpool.Pool) portsrepo.TenantRepositoryFacade {
	return &PgxTenantRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTenantRepository implements portsrepo.TenantRepositoryFacade
var _ portsrepo.TenantRepositoryFacade = (*PgxTenantRepository)(nil)

const tenantColumns = `tenant_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanTenant(row pgx.Row) (models.Tenant, error) {
	var m models.Tenant
	err := row.Scan(
		&m.TenantID,
		&m.Name,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTenant persists a new tenant and the creator's admin membership in one
// transaction, so a tenant never exists without an admin.
func (r *PgxTenantRepository) SaveTenant(ctx context.Context, tenant domain.Tenant, creatorUserID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTenant(tenant)
	tenantQuery := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, tenantQuery,
		m.TenantID,
		m.Name,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: tenant %s already exists", apperrors.ErrDuplicate, m.TenantID)
		}
		return fmt.Errorf("failed to insert tenant %s: %w", m.TenantID, err)
	}

	membershipQuery := `
		INSERT INTO user_tenants (user_id, tenant_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.Exec(ctx, membershipQuery, creatorUserID, m.TenantID, string(domain.RoleAdmin), m.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert creator membership for tenant %s: %w", m.TenantID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTenantByID retrieves a tenant by its ID.
func (r *PgxTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE tenant_id = $1;
	`
	m, err := scanTenant(r.Pool.QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant by ID %s: %w", tenantID, err)
	}
	t := mapping.ToDomainTenant(m)
	return &t, nil
}

// ListTenantsByUserID retrieves every tenant the user is an active member of.
func (r *PgxTenantRepository) ListTenantsByUserID(ctx context.Context, userID string) ([]domain.Tenant, error) {
	query := `
		SELECT t.tenant_id, t.name, t.description, t.is_active, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
		FROM tenants t
		JOIN user_tenants ut ON ut.tenant_id = t.tenant_id
		WHERE ut.user_id = $1 AND ut.role <> $2
		ORDER BY t.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID, string(domain.RoleRemoved))
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants for user %s: %w", userID, err)
	}
	defer rows.Close()

	tenants := []domain.Tenant{}
	for rows.Next() {
		m, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant row for user %s: %w", userID, err)
		}
		tenants = append(tenants, mapping.ToDomainTenant(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows for user %s: %w", userID, err)
	}
	return tenants, nil
}

// AddUserToTenant upserts a membership row. Writing RoleRemoved is how a user
// is removed; re-adding later just overwrites the role again.
func (r *PgxTenantRepository) AddUserToTenant(ctx context.Context, membership domain.UserTenant) error {
	query := `
		INSERT INTO user_tenants (user_id, tenant_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, tenant_id)
		DO UPDATE SET role = EXCLUDED.role;
	`
	joinedAt := membership.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	_, err := r.Pool.Exec(ctx, query, membership.UserID, membership.TenantID, string(membership.Role), joinedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert membership of user %s in tenant %s: %w", membership.UserID, membership.TenantID, err)
	}
	return nil
}

// FindUserTenantRole retrieves the user's membership role in a tenant.
func (r *PgxTenantRepository) FindUserTenantRole(ctx context.Context, userID, tenantID string) (domain.UserTenantRole, error) {
	query := `
		SELECT role
		FROM user_tenants
		WHERE user_id = $1 AND tenant_id = $2;
	`
	var role string
	err := r.Pool.QueryRow(ctx, query, userID, tenantID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to find role of user %s in tenant %s: %w", userID, tenantID, err)
	}
	return domain.UserTenantRole(role), nil
}

// ListTenantUsers retrieves a tenant's active memberships with user names.
func (r *PgxTenantRepository) ListTenantUsers(ctx context.Context, tenantID string) ([]domain.UserTenant, error) {
	query := `
		SELECT ut.user_id, u.name, ut.tenant_id, ut.role, ut.joined_at
		FROM user_tenants ut
		JOIN users u ON u.user_id = ut.user_id
		WHERE ut.tenant_id = $1 AND ut.role <> $2
		ORDER BY ut.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, string(domain.RoleRemoved))
	if err != nil {
		return nil, fmt.Errorf("failed to query users of tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	users := []domain.UserTenant{}
	for rows.Next() {
		var ut domain.UserTenant
		var role string
		if err := rows.Scan(&ut.UserID, &ut.UserName, &ut.TenantID, &role, &ut.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership row for tenant %s: %w", tenantID, err)
		}
		ut.Role = domain.UserTenantRole(role)
		users = append(users, ut)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows for tenant %s: %w", tenantID, err)
	}
	return users, nil
}

// GrantApproverRole upserts a named approver role grant.
func (r *PgxTenantRepository) GrantApproverRole(ctx context.Context, grant domain.ApproverRole) error {
	query := `
		INSERT INTO approver_roles (tenant_id, user_id, role, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, user_id, role) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query, grant.TenantID, grant.UserID, grant.Role, grant.GrantedBy, grant.GrantedAt)
	if err != nil {
		return fmt.Errorf("failed to grant role %s to user %s: %w", grant.Role, grant.UserID, err)
	}
	return nil
}

// RevokeApproverRole deletes a role grant.
func (r *PgxTenantRepository) RevokeApproverRole(ctx context.Context, tenantID, userID, role string) error {
	query := `
		DELETE FROM approver_roles
		WHERE tenant_id = $1 AND user_id = $2 AND role = $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to revoke role %s from user %s: %w", role, userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// HasApproverRole reports whether the user holds a direct role grant.
func (r *PgxTenantRepository) HasApproverRole(ctx context.Context, tenantID, userID, role string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM approver_roles
			WHERE tenant_id = $1 AND user_id = $2 AND role = $3
		);
	`
	var held bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, userID, role).Scan(&held); err != nil {
		return false, fmt.Errorf("failed to check role %s of user %s: %w", role, userID, err)
	}
	return held, nil
}

// ListApproverRoles retrieves every role grant in a tenant.
func (r *PgxTenantRepository) ListApproverRoles(ctx context.Context, tenantID string) ([]domain.ApproverRole, error) {
	query := `
		SELECT tenant_id, user_id, role, granted_by, granted_at
		FROM approver_roles
		WHERE tenant_id = $1
		ORDER BY role, granted_at;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approver roles for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	grants := []domain.ApproverRole{}
	for rows.Next() {
		var g domain.ApproverRole
		if err := rows.Scan(&g.TenantID, &g.UserID, &g.Role, &g.GrantedBy, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approver role row for tenant %s: %w", tenantID, err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approver role rows for tenant %s: %w", tenantID, err)
	}
	return grants, nil
}

// SaveDelegation inserts a new delegation window.
func (r *PgxTenantRepository) SaveDelegation(ctx context.Context, delegation domain.RoleDelegation) error {
	query := `
		INSERT INTO role_delegations (delegation_id, tenant_id, role, from_user_id, to_user_id, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		delegation.DelegationID,
		delegation.TenantID,
		delegation.Role,
		delegation.FromUserID,
		delegation.ToUserID,
		delegation.StartsAt,
		delegation.EndsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save delegation %s: %w", delegation.DelegationID, err)
	}
	return nil
}

// HasActiveDelegation reports whether someone holding the role has delegated it
// to the user for a window covering the given instant. The delegator must still
// hold the role at check time; a revoked grant silently voids its delegations.
func (r *PgxTenantRepository) HasActiveDelegation(ctx context.Context, tenantID, toUserID, role string, asOf time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM role_delegations d
			JOIN approver_roles ar ON ar.tenant_id = d.tenant_id AND ar.user_id = d.from_user_id AND ar.role = d.role
			WHERE d.tenant_id = $1 AND d.to_user_id = $2 AND d.role = $3
			  AND d.starts_at <= $4 AND d.ends_at > $4
		);
	`
	var active bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, toUserID, role, asOf).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to check delegation of role %s to user %s: %w", role, toUserID, err)
	}
	return active, nil
}

// ListDelegations retrieves a tenant's delegations, newest window first.
func (r *PgxTenantRepository) ListDelegations(ctx context.Context, tenantID string) ([]domain.RoleDelegation, error) {
	query := `
		SELECT delegation_id, tenant_id, role, from_user_id, to_user_id, starts_at, ends_at
		FROM role_delegations
		WHERE tenant_id = $1
		ORDER BY starts_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delegations for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	delegations := []domain.RoleDelegation{}
	for rows.Next() {
		var m models.RoleDelegation
		if err := rows.Scan(&m.DelegationID, &m.TenantID, &m.Role, &m.FromUserID, &m.ToUserID, &m.StartsAt, &m.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan delegation row for tenant %s: %w", tenantID, err)
		}
		delegations = append(delegations, mapping.ToDomainDelegation(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delegation rows for tenant %s: %w", tenantID, err)
	}
	return delegations, nil
}
