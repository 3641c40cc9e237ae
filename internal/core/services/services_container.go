package services

import (
	portsrepo "github.com/finpost/finpost_app/internal/core/ports/repositories"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/platform/config"
)

// NewServiceContainer wires the service layer. Construction order matters:
// the tenant service is the authorization guard everything else depends on,
// and the voucher service must exist before the approval service so the
// latter can auto-post through it.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.UserSvc = NewUserService(repos.UserRepo)
	container.AuthSvc = NewAuthService(cfg, container.UserSvc)
	container.TenantSvc = NewTenantService(repos.TenantRepo, container.UserSvc)

	container.AccountSvc = NewAccountService(repos.AccountRepo, container.TenantSvc)
	container.PeriodSvc = NewPeriodService(repos.PeriodRepo, container.TenantSvc)
	container.DocTypeSvc = NewDocumentTypeService(repos.DocTypeRepo, container.TenantSvc)

	container.VoucherSvc = NewVoucherService(
		repos.VoucherRepo,
		repos.ApprovalRepo,
		repos.PeriodRepo,
		repos.DocTypeRepo,
		repos.AccountRepo,
		container.TenantSvc,
	)
	container.ApprovalSvc = NewApprovalService(
		repos.ApprovalRepo,
		repos.VoucherRepo,
		container.TenantSvc,
		container.VoucherSvc,
	)
	container.ApprovalRuleSvc = NewApprovalRuleService(repos.ApprovalRepo, repos.DocTypeRepo, container.TenantSvc)
	container.AuditSvc = NewAuditService(repos.AuditRepo, container.TenantSvc)

	return container
}
