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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxApprovalRepository struct {
	BaseRepository
	auditRepo portsrepo.AuditRepositoryFacade
}

// newPgxApprovalRepository creates a new repository for approval rules and steps.
func newPgxApprovalRepository(pool *pgxpool.Pool, auditRepo portsrepo.AuditRepositoryFacade) portsrepo.ApprovalRepositoryFacade {
	return &PgxApprovalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		auditRepo:      auditRepo,
	}
}

// Ensure PgxApprovalRepository implements portsrepo.ApprovalRepositoryFacade
var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

const approvalRuleColumns = `rule_id, tenant_id, doc_type_id, min_amount, mode, roles, priority, is_active, created_at, created_by, last_updated_at, last_updated_by`

const approvalStepColumns = `step_id, voucher_id, tenant_id, step_number, required_role, mode, status, acted_by, acted_at, comment, escalated_at, created_at, created_by, last_updated_at, last_updated_by`

func scanApprovalRule(row pgx.Row) (models.ApprovalRule, error) {
	var m models.ApprovalRule
	err := row.Scan(
		&m.RuleID,
		&m.TenantID,
		&m.DocTypeID,
		&m.MinAmount,
		&m.Mode,
		&m.Roles,
		&m.Priority,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanApprovalStep(row pgx.Row) (models.ApprovalStep, error) {
	var m models.ApprovalStep
	err := row.Scan(
		&m.StepID,
		&m.VoucherID,
		&m.TenantID,
		&m.StepNumber,
		&m.RequiredRole,
		&m.Mode,
		&m.Status,
		&m.ActedBy,
		&m.ActedAt,
		&m.Comment,
		&m.EscalatedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveRule inserts a new approval rule.
func (r *PgxApprovalRepository) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	m := mapping.ToModelApprovalRule(rule)
	query := `
		INSERT INTO approval_rules (` + approvalRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID,
		m.TenantID,
		m.DocTypeID,
		m.MinAmount,
		m.Mode,
		m.Roles,
		m.Priority,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save approval rule %s: %w", m.RuleID, err)
	}
	return nil
}

// UpdateRule updates an approval rule's mutable fields. In-flight vouchers keep
// the step snapshot materialized at their submission.
func (r *PgxApprovalRepository) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	m := mapping.ToModelApprovalRule(rule)
	query := `
		UPDATE approval_rules
		SET min_amount = $3, mode = $4, roles = $5, priority = $6, is_active = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE tenant_id = $1 AND rule_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.TenantID,
		m.RuleID,
		m.MinAmount,
		m.Mode,
		m.Roles,
		m.Priority,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval rule %s: %w", m.RuleID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindMatchingRule returns the best active rule for a document type and amount.
// Lowest priority value wins; among equal priorities the highest threshold wins
// so the most specific rule matches first.
func (r *PgxApprovalRepository) FindMatchingRule(ctx context.Context, tenantID, docTypeID string, amount decimal.Decimal) (*domain.ApprovalRule, error) {
	query := `
		SELECT ` + approvalRuleColumns + `
		FROM approval_rules
		WHERE tenant_id = $1 AND doc_type_id = $2 AND is_active = TRUE
		  AND (min_amount IS NULL OR min_amount <= $3)
		ORDER BY priority ASC, min_amount DESC NULLS LAST
		LIMIT 1;
	`
	m, err := scanApprovalRule(r.Pool.QueryRow(ctx, query, tenantID, docTypeID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find matching rule for doc type %s: %w", docTypeID, err)
	}
	rule := mapping.ToDomainApprovalRule(m)
	return &rule, nil
}

// FindRuleByID retrieves a single rule within a tenant.
func (r *PgxApprovalRepository) FindRuleByID(ctx context.Context, tenantID, ruleID string) (*domain.ApprovalRule, error) {
	query := `
		SELECT ` + approvalRuleColumns + `
		FROM approval_rules
		WHERE tenant_id = $1 AND rule_id = $2;
	`
	m, err := scanApprovalRule(r.Pool.QueryRow(ctx, query, tenantID, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval rule by ID %s: %w", ruleID, err)
	}
	rule := mapping.ToDomainApprovalRule(m)
	return &rule, nil
}

// ListRules retrieves a tenant's rules ordered by priority.
func (r *PgxApprovalRepository) ListRules(ctx context.Context, tenantID string) ([]domain.ApprovalRule, error) {
	query := `
		SELECT ` + approvalRuleColumns + `
		FROM approval_rules
		WHERE tenant_id = $1
		ORDER BY priority ASC, created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval rules for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	rules := []domain.ApprovalRule{}
	for rows.Next() {
		m, err := scanApprovalRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval rule row: %w", err)
		}
		rules = append(rules, mapping.ToDomainApprovalRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval rule rows: %w", err)
	}
	return rules, nil
}

// SubmitWithSteps flips the voucher from DRAFT to AWAITING_APPROVAL, inserts
// the step snapshot materialized at submission and writes the submission audit
// entry, all in one transaction. A failure anywhere rolls the whole
// transition back, so a voucher can never sit in routing without its steps.
func (r *PgxApprovalRepository) SubmitWithSteps(ctx context.Context, tenantID, voucherID, actorID string, at time.Time, steps []domain.ApprovalStep, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	voucherQuery := `
		UPDATE vouchers
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, voucherQuery,
		tenantID,
		voucherID,
		string(domain.StatusAwaitingApproval),
		at,
		actorID,
		string(domain.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to submit voucher %s: %w", voucherID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStateConflict
	}

	query := `
		INSERT INTO approval_steps (` + approvalStepColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	for _, step := range steps {
		m := mapping.ToModelApprovalStep(step)
		batch.Queue(query,
			m.StepID,
			m.VoucherID,
			m.TenantID,
			m.StepNumber,
			m.RequiredRole,
			m.Mode,
			m.Status,
			m.ActedBy,
			m.ActedAt,
			m.Comment,
			m.EscalatedAt,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute approval step batch: %w", err)
	}

	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindStepByID retrieves a single step within a tenant.
func (r *PgxApprovalRepository) FindStepByID(ctx context.Context, tenantID, stepID string) (*domain.ApprovalStep, error) {
	query := `
		SELECT ` + approvalStepColumns + `
		FROM approval_steps
		WHERE tenant_id = $1 AND step_id = $2;
	`
	m, err := scanApprovalStep(r.Pool.QueryRow(ctx, query, tenantID, stepID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval step by ID %s: %w", stepID, err)
	}
	step := mapping.ToDomainApprovalStep(m)
	return &step, nil
}

// FindStepsByVoucherID retrieves a voucher's steps in step-number order.
func (r *PgxApprovalRepository) FindStepsByVoucherID(ctx context.Context, tenantID, voucherID string) ([]domain.ApprovalStep, error) {
	query := `
		SELECT ` + approvalStepColumns + `
		FROM approval_steps
		WHERE tenant_id = $1 AND voucher_id = $2
		ORDER BY step_number;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval steps for voucher %s: %w", voucherID, err)
	}
	defer rows.Close()

	steps := []models.ApprovalStep{}
	for rows.Next() {
		m, err := scanApprovalStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval step row for voucher %s: %w", voucherID, err)
		}
		steps = append(steps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval step rows for voucher %s: %w", voucherID, err)
	}
	return mapping.ToDomainApprovalStepSlice(steps), nil
}

// ListPendingStepsOlderThan retrieves pending steps created before the cutoff
// across all tenants, for the escalation sweep. Steps already escalated once
// are excluded so the sweep never reassigns the same step twice.
func (r *PgxApprovalRepository) ListPendingStepsOlderThan(ctx context.Context, cutoff time.Time) ([]domain.ApprovalStep, error) {
	query := `
		SELECT ` + approvalStepColumns + `
		FROM approval_steps
		WHERE status = $1 AND created_at < $2 AND escalated_at IS NULL
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.StepPending), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue approval steps: %w", err)
	}
	defer rows.Close()

	steps := []models.ApprovalStep{}
	for rows.Next() {
		m, err := scanApprovalStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue approval step row: %w", err)
		}
		steps = append(steps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue approval step rows: %w", err)
	}
	return mapping.ToDomainApprovalStepSlice(steps), nil
}

// notFoundOrConflict disambiguates a zero-row optimistic step update: the step
// either does not exist in the tenant or was already actioned by someone else.
func (r *PgxApprovalRepository) notFoundOrConflict(ctx context.Context, tx pgx.Tx, tenantID, stepID string) error {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM approval_steps WHERE tenant_id = $1 AND step_id = $2);`, tenantID, stepID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check approval step %s after zero-row update: %w", stepID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrConflict
}

// ApproveStep marks a pending step approved. The status precondition is the
// optimistic check that lets exactly one of two concurrent approvers win.
func (r *PgxApprovalRepository) ApproveStep(ctx context.Context, tenantID, stepID, actorID string, at time.Time, comment string, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE approval_steps
		SET status = $3, acted_by = $4, acted_at = $5, comment = $6, last_updated_at = $5, last_updated_by = $4
		WHERE tenant_id = $1 AND step_id = $2 AND status = $7;
	`
	cmdTag, err := tx.Exec(ctx, query,
		tenantID,
		stepID,
		string(domain.StepApproved),
		actorID,
		at,
		comment,
		string(domain.StepPending),
	)
	if err != nil {
		return fmt.Errorf("failed to approve step %s: %w", stepID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notFoundOrConflict(ctx, tx, tenantID, stepID)
	}

	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// RejectStep marks the step rejected, cancels the voucher's remaining pending
// steps and returns the voucher to draft, all in one transaction.
func (r *PgxApprovalRepository) RejectStep(ctx context.Context, tenantID, voucherID, stepID, actorID string, at time.Time, comment string, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	rejectQuery := `
		UPDATE approval_steps
		SET status = $3, acted_by = $4, acted_at = $5, comment = $6, last_updated_at = $5, last_updated_by = $4
		WHERE tenant_id = $1 AND step_id = $2 AND status = $7;
	`
	cmdTag, err := tx.Exec(ctx, rejectQuery,
		tenantID,
		stepID,
		string(domain.StepRejected),
		actorID,
		at,
		comment,
		string(domain.StepPending),
	)
	if err != nil {
		return fmt.Errorf("failed to reject step %s: %w", stepID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notFoundOrConflict(ctx, tx, tenantID, stepID)
	}

	if err := r.cancelPendingStepsInTx(ctx, tx, tenantID, voucherID, actorID, at); err != nil {
		return err
	}

	voucherQuery := `
		UPDATE vouchers
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $6;
	`
	vTag, err := tx.Exec(ctx, voucherQuery,
		tenantID,
		voucherID,
		string(domain.StatusDraft),
		at,
		actorID,
		string(domain.StatusAwaitingApproval),
	)
	if err != nil {
		return fmt.Errorf("failed to return voucher %s to draft after rejection: %w", voucherID, err)
	}
	if vTag.RowsAffected() == 0 {
		return apperrors.ErrStateConflict
	}

	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxApprovalRepository) cancelPendingStepsInTx(ctx context.Context, tx pgx.Tx, tenantID, voucherID, actorID string, at time.Time) error {
	query := `
		UPDATE approval_steps
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND voucher_id = $2 AND status = $6;
	`
	_, err := tx.Exec(ctx, query,
		tenantID,
		voucherID,
		string(domain.StepCancelled),
		at,
		actorID,
		string(domain.StepPending),
	)
	if err != nil {
		return fmt.Errorf("failed to cancel pending steps of voucher %s: %w", voucherID, err)
	}
	return nil
}

// CancelPendingSteps cancels every pending step of a voucher, used when the
// voucher itself is cancelled while awaiting approval.
func (r *PgxApprovalRepository) CancelPendingSteps(ctx context.Context, tenantID, voucherID, actorID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.cancelPendingStepsInTx(ctx, tx, tenantID, voucherID, actorID, at); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// EscalateStep reassigns a pending step's required role and stamps the
// escalation time. The step stays pending for the new role's holders.
func (r *PgxApprovalRepository) EscalateStep(ctx context.Context, tenantID, stepID, escalationRole string, at time.Time, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE approval_steps
		SET required_role = $3, escalated_at = $4, last_updated_at = $4
		WHERE tenant_id = $1 AND step_id = $2 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query,
		tenantID,
		stepID,
		escalationRole,
		at,
		string(domain.StepPending),
	)
	if err != nil {
		return fmt.Errorf("failed to escalate step %s: %w", stepID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notFoundOrConflict(ctx, tx, tenantID, stepID)
	}

	if err := r.auditRepo.SaveEntryInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
