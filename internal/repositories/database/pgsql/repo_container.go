package pgsql

import (
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	tenantRepo := newPgxTenantRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)
	periodRepo := newPgxPeriodRepository(dbPool, auditRepo)
	docTypeRepo := newPgxDocumentTypeRepository(dbPool)
	sequenceRepo := newPgxSequenceRepository(dbPool)
	voucherRepo := newPgxVoucherRepository(dbPool, accountRepo, sequenceRepo, auditRepo)
	approvalRepo := newPgxApprovalRepository(dbPool, auditRepo)

	return portsrepo.RepositoryProvider{
		TenantRepo:   tenantRepo,
		UserRepo:     userRepo,
		AccountRepo:  accountRepo,
		PeriodRepo:   periodRepo,
		DocTypeRepo:  docTypeRepo,
		SequenceRepo: sequenceRepo,
		VoucherRepo:  voucherRepo,
		ApprovalRepo: approvalRepo,
		AuditRepo:    auditRepo,
	}
}
