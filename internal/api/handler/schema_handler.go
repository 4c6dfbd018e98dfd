package handler

import (
	"errors"
	"net/http"

	"github.com/buslane/buslane/internal/schema"
	"github.com/gin-gonic/gin"
)

// SchemaHandler serves the schema catalog and upload templates.
type SchemaHandler struct {
	registry *schema.Registry
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(registry *schema.Registry) *SchemaHandler {
	return &SchemaHandler{registry: registry}
}

// ListSchemas returns every importable schema definition.
func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"schemas": h.registry.Schemas(),
	})
}

// GetSchema returns one schema definition by ID.
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	def, err := h.registry.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, def)
}

// GetTemplate serves a downloadable CSV template for a schema.
func (h *SchemaHandler) GetTemplate(c *gin.Context) {
	def, err := h.registry.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+schema.TemplateFileName(def))
	c.Data(http.StatusOK, "text/csv", []byte(schema.Template(def)))
}
