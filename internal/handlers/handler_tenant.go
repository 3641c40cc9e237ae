package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// tenantHandler handles HTTP requests for tenants, memberships, approver roles
// and delegations.
type tenantHandler struct {
	tenantService portssvc.TenantSvcFacade
}

func newTenantHandler(ts portssvc.TenantSvcFacade) *tenantHandler {
	return &tenantHandler{tenantService: ts}
}

// registerTenantRoutes registers tenant management routes and nests every
// tenant-scoped resource under /tenants/:tenant_id.
func registerTenantRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newTenantHandler(services.TenantSvc)

	tenants := rg.Group("/tenants")
	{
		tenants.POST("", h.createTenant)
		tenants.GET("", h.listUserTenants)
	}

	tenant := rg.Group("/tenants/:tenant_id")
	{
		tenant.GET("", h.getTenant)

		users := tenant.Group("/users")
		{
			users.POST("", h.addUserToTenant)
			users.GET("", h.listTenantUsers)
			users.DELETE("/:user_id", h.removeUserFromTenant)
		}

		roles := tenant.Group("/approver-roles")
		{
			roles.POST("", h.grantApproverRole)
			roles.GET("", h.listApproverRoles)
			roles.DELETE("/:user_id/:role", h.revokeApproverRole)
		}

		delegations := tenant.Group("/delegations")
		{
			delegations.POST("", h.createDelegation)
			delegations.GET("", h.listDelegations)
		}

		registerAccountRoutes(tenant, services.AccountSvc, services.VoucherSvc)
		registerPeriodRoutes(tenant, services.PeriodSvc)
		registerDocumentTypeRoutes(tenant, services.DocTypeSvc)
		registerVoucherRoutes(tenant, services.VoucherSvc, services.ApprovalSvc)
		registerApprovalRuleRoutes(tenant, services.ApprovalRuleSvc)
		registerAuditRoutes(tenant, services.AuditSvc)
	}
}

// createTenant godoc
// @Summary Create a new tenant
// @Description Creates a tenant and makes the creator its admin.
// @Tags tenants
// @Accept json
// @Produce json
// @Param tenant body dto.CreateTenantRequest true "Tenant details"
// @Success 201 {object} dto.TenantResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /tenants [post]
func (h *tenantHandler) createTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTenant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create tenant")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTenantResponse(tenant))
}

// listUserTenants godoc
// @Summary List tenants for current user
// @Tags tenants
// @Produce json
// @Success 200 {object} dto.ListTenantsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /tenants [get]
func (h *tenantHandler) listUserTenants(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tenants, err := h.tenantService.ListUserTenants(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list tenants")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTenantsResponse(tenants))
}

// getTenant godoc
// @Summary Get tenant details
// @Tags tenants
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.TenantResponse
// @Failure 404 {object} map[string]string "Tenant not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id} [get]
func (h *tenantHandler) getTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.tenantService.AuthorizeUserAction(c.Request.Context(), userID, tenantID); err != nil {
		respondServiceError(c, logger, err, "Failed to get tenant")
		return
	}

	tenant, err := h.tenantService.GetTenantByID(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get tenant")
		return
	}
	c.JSON(http.StatusOK, dto.ToTenantResponse(tenant))
}

// addUserToTenant godoc
// @Summary Add a user to a tenant
// @Description Adds a user with a given role. Requires admin permission.
// @Tags tenants
// @Accept json
// @Param tenant_id path string true "Tenant ID"
// @Param membership body dto.AddUserToTenantRequest true "User ID and role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/users [post]
func (h *tenantHandler) addUserToTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.AddUserToTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToTenant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.tenantService.AddUserToTenant(c.Request.Context(), tenantID, req.UserID, req.Role, requestingUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to add user to tenant")
		return
	}
	c.Status(http.StatusNoContent)
}

// listTenantUsers godoc
// @Summary List tenant members
// @Tags tenants
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.UserTenantResponse
// @Failure 403 {object} map[string]string "Not a member"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/users [get]
func (h *tenantHandler) listTenantUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	users, err := h.tenantService.ListTenantUsers(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list tenant users")
		return
	}

	resp := make([]dto.UserTenantResponse, len(users))
	for i := range users {
		resp[i] = dto.ToUserTenantResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// removeUserFromTenant godoc
// @Summary Remove a user from a tenant
// @Tags tenants
// @Param tenant_id path string true "Tenant ID"
// @Param user_id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/users/{user_id} [delete]
func (h *tenantHandler) removeUserFromTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	userID := c.Param("user_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.tenantService.RemoveUserFromTenant(c.Request.Context(), tenantID, userID, requestingUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to remove user from tenant")
		return
	}
	c.Status(http.StatusNoContent)
}

// grantApproverRole godoc
// @Summary Grant an approver role
// @Description Grants a named approver role (e.g. MANAGER) to a user. Requires admin permission.
// @Tags approver-roles
// @Accept json
// @Param tenant_id path string true "Tenant ID"
// @Param grant body dto.GrantApproverRoleRequest true "User ID and role"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approver-roles [post]
func (h *tenantHandler) grantApproverRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.GrantApproverRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GrantApproverRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.tenantService.GrantApproverRole(c.Request.Context(), tenantID, req.UserID, req.Role, requestingUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to grant approver role")
		return
	}
	c.Status(http.StatusNoContent)
}

// listApproverRoles godoc
// @Summary List approver role grants
// @Tags approver-roles
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.ApproverRoleResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approver-roles [get]
func (h *tenantHandler) listApproverRoles(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	grants, err := h.tenantService.ListApproverRoles(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list approver roles")
		return
	}

	resp := make([]dto.ApproverRoleResponse, len(grants))
	for i := range grants {
		resp[i] = dto.ToApproverRoleResponse(&grants[i])
	}
	c.JSON(http.StatusOK, resp)
}

// revokeApproverRole godoc
// @Summary Revoke an approver role
// @Tags approver-roles
// @Param tenant_id path string true "Tenant ID"
// @Param user_id path string true "User ID"
// @Param role path string true "Role name"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approver-roles/{user_id}/{role} [delete]
func (h *tenantHandler) revokeApproverRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	userID := c.Param("user_id")
	role := c.Param("role")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.tenantService.RevokeApproverRole(c.Request.Context(), tenantID, userID, role, requestingUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to revoke approver role")
		return
	}
	c.Status(http.StatusNoContent)
}

// createDelegation godoc
// @Summary Delegate an approver role
// @Description Delegates a role the caller holds to another member for a bounded window.
// @Tags delegations
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param delegation body dto.CreateDelegationRequest true "Delegation window"
// @Success 201 {object} dto.DelegationResponse
// @Failure 403 {object} map[string]string "Caller does not hold the role"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/delegations [post]
func (h *tenantHandler) createDelegation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDelegation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	delegation, err := h.tenantService.DelegateRole(c.Request.Context(), tenantID, req, requestingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create delegation")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDelegationResponse(delegation))
}

// listDelegations godoc
// @Summary List role delegations
// @Tags delegations
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.DelegationResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/delegations [get]
func (h *tenantHandler) listDelegations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	delegations, err := h.tenantService.ListDelegations(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list delegations")
		return
	}

	resp := make([]dto.DelegationResponse, len(delegations))
	for i := range delegations {
		resp[i] = dto.ToDelegationResponse(&delegations[i])
	}
	c.JSON(http.StatusOK, resp)
}
