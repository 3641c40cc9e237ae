package handlers

import (
	"net/http"

	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// auditHandler exposes the append-only audit trail, read side only.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers audit trail routes under a tenant group.
func registerAuditRoutes(tenant *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	tenant.GET("/audit/:subject_type/:subject_id", h.listAuditTrail)
}

// listAuditTrail godoc
// @Summary List the audit trail of a subject
// @Description Returns every recorded state transition and administrative action for one subject, newest first.
// @Tags audit
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param subject_type path string true "Subject type" Enums(VOUCHER, APPROVAL_STEP, APPROVAL_RULE, ACCOUNT, PERIOD, DOCUMENT_TYPE, TENANT)
// @Param subject_id path string true "Subject ID"
// @Success 200 {object} dto.ListAuditEntriesResponse
// @Failure 403 {object} map[string]string "Caller is not a member"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/audit/{subject_type}/{subject_id} [get]
func (h *auditHandler) listAuditTrail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	subjectType := c.Param("subject_type")
	subjectID := c.Param("subject_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.auditService.ListAuditTrail(c.Request.Context(), tenantID, subjectType, subjectID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list audit trail")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAuditEntriesResponse(entries))
}
