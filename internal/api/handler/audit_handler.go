package handler

import (
	"net/http"
	"strconv"

	"github.com/buslane/buslane/internal/service"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the import history.
type AuditHandler struct {
	imports *service.ImportService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(imports *service.ImportService) *AuditHandler {
	return &AuditHandler{imports: imports}
}

// ListAudits returns recent import audit records, newest first.
func (h *AuditHandler) ListAudits(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	audits, err := h.imports.Audits(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audits": audits})
}
