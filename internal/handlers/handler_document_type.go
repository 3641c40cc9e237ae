package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finpost/finpost_app/internal/core/ports/services"
	"github.com/finpost/finpost_app/internal/dto"
	"github.com/finpost/finpost_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// documentTypeHandler handles document type management.
type documentTypeHandler struct {
	docTypeService portssvc.DocumentTypeSvcFacade
}

func newDocumentTypeHandler(ds portssvc.DocumentTypeSvcFacade) *documentTypeHandler {
	return &documentTypeHandler{docTypeService: ds}
}

// registerDocumentTypeRoutes registers document type routes under a tenant group.
func registerDocumentTypeRoutes(tenant *gin.RouterGroup, docTypeService portssvc.DocumentTypeSvcFacade) {
	h := newDocumentTypeHandler(docTypeService)

	docTypes := tenant.Group("/document-types")
	{
		docTypes.POST("", h.createDocumentType)
		docTypes.GET("", h.listDocumentTypes)
		docTypes.GET("/:doc_type_id", h.getDocumentType)
		docTypes.PUT("/:doc_type_id", h.updateDocumentType)
	}
}

// createDocumentType godoc
// @Summary Create a document type
// @Tags document-types
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param documentType body dto.CreateDocumentTypeRequest true "Document type details"
// @Success 201 {object} dto.DocumentTypeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Code already in use"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/document-types [post]
func (h *documentTypeHandler) createDocumentType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocumentType", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	docType, err := h.docTypeService.CreateDocumentType(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create document type")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentTypeResponse(docType))
}

// getDocumentType godoc
// @Summary Get a document type
// @Tags document-types
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param doc_type_id path string true "Document type ID"
// @Success 200 {object} dto.DocumentTypeResponse
// @Failure 404 {object} map[string]string "Document type not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/document-types/{doc_type_id} [get]
func (h *documentTypeHandler) getDocumentType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	docTypeID := c.Param("doc_type_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	docType, err := h.docTypeService.GetDocumentTypeByID(c.Request.Context(), tenantID, docTypeID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get document type")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentTypeResponse(docType))
}

// listDocumentTypes godoc
// @Summary List document types
// @Tags document-types
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Success 200 {object} dto.ListDocumentTypesResponse
// @Security BearerAuth
// @Router /tenants/{tenant_id}/document-types [get]
func (h *documentTypeHandler) listDocumentTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	docTypes, err := h.docTypeService.ListDocumentTypes(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list document types")
		return
	}
	c.JSON(http.StatusOK, dto.ToListDocumentTypesResponse(docTypes))
}

// updateDocumentType godoc
// @Summary Update a document type
// @Description Updates name, approval requirement, account type restrictions or active flag. Code and number prefix are immutable.
// @Tags document-types
// @Accept json
// @Produce json
// @Param tenant_id path string true "Tenant ID"
// @Param doc_type_id path string true "Document type ID"
// @Param documentType body dto.UpdateDocumentTypeRequest true "Fields to update"
// @Success 200 {object} dto.DocumentTypeResponse
// @Failure 404 {object} map[string]string "Document type not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/document-types/{doc_type_id} [put]
func (h *documentTypeHandler) updateDocumentType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	docTypeID := c.Param("doc_type_id")

	var req dto.UpdateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDocumentType", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	docType, err := h.docTypeService.UpdateDocumentType(c.Request.Context(), tenantID, docTypeID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update document type")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentTypeResponse(docType))
}
