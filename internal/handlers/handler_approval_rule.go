package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// approvalRuleHandler handles the approval rule catalogue. Rule changes never
// rewire vouchers already in routing: their chains were snapshotted at
// submission.
type approvalRuleHandler struct {
	ruleService portssvc.ApprovalRuleSvcFacade
}

func newApprovalRuleHandler(rs portssvc.ApprovalRuleSvcFacade) *approvalRuleHandler {
	return &approvalRuleHandler{ruleService: rs}
}

// registerApprovalRuleRoutes registers approval rule routes under a tenant group.
func registerApprovalRuleRoutes(tenant *gin.RouterGroup, ruleService portssvc.ApprovalRuleSvcFacade) {
	h := newApprovalRuleHandler(ruleService)

	rules := tenant.Group("/approval-rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/:rule_id", h.getRule)
		rules.PUT("/:rule_id", h.updateRule)
	}
}

// createRule godoc
// @Summary Create an approval rule
// @Tags approval-rules
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param rule body dto.CreateApprovalRuleRequest true "Rule details"
// @Success 201 {object} dto.ApprovalRuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approval-rules [post]
func (h *approvalRuleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create approval rule")
		return
	}
	c.JSON(http.StatusCreated, dto.ToApprovalRuleResponse(rule))
}

// getRule godoc
// @Summary Get an approval rule
// @Tags approval-rules
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param rule_id path string true "Rule ID"
// @Success 200 {object} dto.ApprovalRuleResponse
// @Failure 404 {object} map[string]string "Rule not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approval-rules/{rule_id} [get]
func (h *approvalRuleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	ruleID := c.Param("rule_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), tenantID, ruleID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get approval rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalRuleResponse(rule))
}

// listRules godoc
// @Summary List approval rules
// @Tags approval-rules
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.ListApprovalRulesResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approval-rules [get]
func (h *approvalRuleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list approval rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListApprovalRulesResponse(rules))
}

// updateRule godoc
// @Summary Update an approval rule
// @Description Changes apply to future submissions only; chains already materialized keep their snapshot.
// @Tags approval-rules
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param rule_id path string true "Rule ID"
// @Param rule body dto.UpdateApprovalRuleRequest true "Fields to update"
// @Success 200 {object} dto.ApprovalRuleResponse
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Failure 404 {object} map[string]string "Rule not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/approval-rules/{rule_id} [put]
func (h *approvalRuleHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	ruleID := c.Param("rule_id")

	var req dto.UpdateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), tenantID, ruleID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update approval rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalRuleResponse(rule))
}
