package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finpost/finpost_app/internal/apperrors"
	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// voucherHandler handles the voucher lifecycle: draft, submit, approve-chain
// actions, post, reverse, cancel.
type voucherHandler struct {
	voucherService  portssvc.VoucherSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

func newVoucherHandler(vs portssvc.VoucherSvcFacade, as portssvc.ApprovalSvcFacade) *voucherHandler {
	return &voucherHandler{
		voucherService:  vs,
		approvalService: as,
	}
}

// registerVoucherRoutes registers voucher routes under a tenant group.
func registerVoucherRoutes(tenant *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newVoucherHandler(voucherService, approvalService)

	vouchers := tenant.Group("/vouchers")
	{
		vouchers.POST("", h.createDraft)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucher_id", h.getVoucher)
		vouchers.PUT("/:voucher_id", h.updateDraft)
		vouchers.POST("/:voucher_id/submit", h.submitForApproval)
		vouchers.POST("/:voucher_id/post", h.postVoucher)
		vouchers.POST("/:voucher_id/reverse", h.reverseVoucher)
		vouchers.POST("/:voucher_id/cancel", h.cancelVoucher)

		steps := vouchers.Group("/:voucher_id/steps")
		{
			steps.GET("", h.listSteps)
			steps.POST("/:step_id/approve", h.approveStep)
			steps.POST("/:step_id/reject", h.rejectStep)
			steps.POST("/:step_id/escalate", h.escalateStep)
		}
	}
}

// createDraft godoc
// @Summary Create a draft voucher
// @Description Creates a draft. Validation is advisory: issues are returned alongside the draft but do not block creation.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher body dto.CreateVoucherRequest true "Voucher details"
// @Success 201 {object} dto.VoucherWithValidationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not a member"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers [post]
func (h *voucherHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, result, err := h.voucherService.CreateDraft(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create voucher")
		return
	}

	c.JSON(http.StatusCreated, dto.VoucherWithValidationResponse{
		Voucher:          dto.ToVoucherResponse(voucher),
		ValidationErrors: dto.ToValidationIssues(result),
	})
}

// getVoucher godoc
// @Summary Get a voucher with its lines
// @Tags vouchers
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), tenantID, voucherID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Tags vouchers
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param status query string false "Filter by status"
// @Param includeReversals query bool false "Include reversing vouchers"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListVouchersResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListVouchers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.voucherService.ListVouchers(c.Request.Context(), tenantID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateDraft godoc
// @Summary Update a draft voucher
// @Description Replaces header fields and, when lines are given, the whole line set. Drafts only.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Param voucher body dto.UpdateVoucherRequest true "Fields to update"
// @Success 200 {object} dto.VoucherWithValidationResponse
// @Failure 409 {object} map[string]string "Voucher is no longer a draft"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id} [put]
func (h *voucherHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, result, err := h.voucherService.UpdateDraft(c.Request.Context(), tenantID, voucherID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update voucher")
		return
	}

	c.JSON(http.StatusOK, dto.VoucherWithValidationResponse{
		Voucher:          dto.ToVoucherResponse(voucher),
		ValidationErrors: dto.ToValidationIssues(result),
	})
}

// submitForApproval godoc
// @Summary Submit a draft for approval
// @Description Runs strict validation. Routes into the approval chain, or posts directly when the document type needs no approval.
// @Tags vouchers
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Validation failed"
// @Failure 409 {object} map[string]string "Voucher is not a draft"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/submit [post]
func (h *voucherHandler) submitForApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, result, err := h.voucherService.SubmitForApproval(c.Request.Context(), tenantID, voucherID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) && !result.OK() {
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
				Error:            "Voucher failed validation",
				ValidationErrors: dto.ToValidationIssues(result),
			})
			return
		}
		respondServiceError(c, logger, err, "Failed to submit voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// postVoucher godoc
// @Summary Post a voucher
// @Description Commits an APPROVED voucher, or a draft to which no approval chain applies, to the ledger. Also the retry path when the automatic post after final approval failed.
// @Tags vouchers
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Validation failed"
// @Failure 409 {object} map[string]string "Voucher is not in a postable state"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, result, err := h.voucherService.Post(c.Request.Context(), tenantID, voucherID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) && !result.OK() {
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
				Error:            "Voucher failed validation",
				ValidationErrors: dto.ToValidationIssues(result),
			})
			return
		}
		respondServiceError(c, logger, err, "Failed to post voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// reverseVoucher godoc
// @Summary Reverse a posted voucher
// @Description Creates, posts and links a reversing voucher with swapped debits and credits. The original is never edited beyond status and back-link.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Param reversal body dto.ReverseVoucherRequest true "Reversal reason"
// @Success 201 {object} dto.VoucherResponse "The reversing voucher"
// @Failure 409 {object} map[string]string "Voucher is not posted or already reversed"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/reverse [post]
func (h *voucherHandler) reverseVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	var req dto.ReverseVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.voucherService.Reverse(c.Request.Context(), tenantID, voucherID, req.Reason, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse voucher")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(reversal))
}

// cancelVoucher godoc
// @Summary Cancel a voucher
// @Description Cancels a DRAFT or AWAITING_APPROVAL voucher. Cancelled vouchers never touch the ledger.
// @Tags vouchers
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string "Voucher cannot be cancelled in its current state"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/cancel [post]
func (h *voucherHandler) cancelVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.voucherService.Cancel(c.Request.Context(), tenantID, voucherID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to cancel voucher")
		return
	}
	c.Status(http.StatusNoContent)
}

// listSteps godoc
// @Summary List a voucher's approval chain
// @Tags approvals
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.ListApprovalStepsResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/steps [get]
func (h *voucherHandler) listSteps(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	steps, err := h.approvalService.ListSteps(c.Request.Context(), tenantID, voucherID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list approval steps")
		return
	}
	c.JSON(http.StatusOK, dto.ToListApprovalStepsResponse(steps))
}

// approveStep godoc
// @Summary Approve a pending step
// @Description Records an approval. When two approvers race on the same step exactly one succeeds; the loser gets 409. Completing the chain posts the voucher.
// @Tags approvals
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Param step_id path string true "Step ID"
// @Param action body dto.ActionStepRequest false "Optional comment"
// @Success 200 {object} dto.VoucherResponse "Voucher after the action"
// @Failure 403 {object} map[string]string "Caller does not hold the required role"
// @Failure 409 {object} map[string]string "Step already actioned or out of order"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/steps/{step_id}/approve [post]
func (h *voucherHandler) approveStep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")
	stepID := c.Param("step_id")

	// Body is optional; an empty body just means no comment.
	var req dto.ActionStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = dto.ActionStepRequest{}
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.approvalService.ApproveStep(c.Request.Context(), tenantID, voucherID, stepID, actorID, req.Comment)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to approve step")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// rejectStep godoc
// @Summary Reject a pending step
// @Description Rejects the step, cancels the remaining pending steps and returns the voucher to DRAFT for rework.
// @Tags approvals
// @Accept json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Param step_id path string true "Step ID"
// @Param action body dto.ActionStepRequest false "Optional comment"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Caller does not hold the required role"
// @Failure 409 {object} map[string]string "Step already actioned"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/steps/{step_id}/reject [post]
func (h *voucherHandler) rejectStep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")
	stepID := c.Param("step_id")

	var req dto.ActionStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = dto.ActionStepRequest{}
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.approvalService.RejectStep(c.Request.Context(), tenantID, voucherID, stepID, actorID, req.Comment); err != nil {
		respondServiceError(c, logger, err, "Failed to reject step")
		return
	}
	c.Status(http.StatusNoContent)
}

// escalateStep godoc
// @Summary Escalate a pending step
// @Description Reassigns the step's required role to the escalation role. The step stays pending. Admin only.
// @Tags approvals
// @Accept json
// @Param tenant_id path string true "Tenant ID"
// @Param voucher_id path string true "Voucher ID"
// @Param step_id path string true "Step ID"
// @Param escalation body dto.EscalateStepRequest true "Escalation role"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Failure 409 {object} map[string]string "Step is no longer pending"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/vouchers/{voucher_id}/steps/{step_id}/escalate [post]
func (h *voucherHandler) escalateStep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	voucherID := c.Param("voucher_id")
	stepID := c.Param("step_id")

	var req dto.EscalateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EscalateStep", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.approvalService.EscalateStep(c.Request.Context(), tenantID, voucherID, stepID, req.EscalationRole, actorID); err != nil {
		respondServiceError(c, logger, err, "Failed to escalate step")
		return
	}
	c.Status(http.StatusNoContent)
}
