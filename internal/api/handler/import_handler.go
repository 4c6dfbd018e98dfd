package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/buslane/buslane/internal/loader"
	"github.com/buslane/buslane/internal/schema"
	"github.com/buslane/buslane/internal/service"
	"github.com/buslane/buslane/internal/tabular"
	"github.com/gin-gonic/gin"
)

// ImportHandler drives import sessions over HTTP.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// CreateSession accepts a multipart upload (fields: file, schema) and opens
// an import session with the parsed document and auto-mapped columns.
func (h *ImportHandler) CreateSession(c *gin.Context) {
	schemaID := c.PostForm("schema")
	if schemaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schema is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	view, err := h.imports.CreateSession(c.Request.Context(), schemaID, fileHeader.Filename, data, c.GetHeader("X-Actor"))
	if err != nil {
		var parseErr *tabular.ParseError
		switch {
		case errors.Is(err, schema.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUploadTooLarge), errors.Is(err, tabular.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.As(err, &parseErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current session state including mapping,
// validation, and preview.
func (h *ImportHandler) GetSession(c *gin.Context) {
	view, err := h.imports.Session(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MappingRequest is one manual mapping change.
type MappingRequest struct {
	Field  string `json:"field" binding:"required"`
	Header string `json:"header"`
	Unset  bool   `json:"unset"`
}

// SetMapping applies a manual mapping change and returns the revalidated
// session state.
func (h *ImportHandler) SetMapping(c *gin.Context) {
	var req MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Unset && req.Header == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "header is required unless unset is true"})
		return
	}

	view, err := h.imports.SetMapping(c.Request.Context(), c.Param("id"), req.Field, req.Header, req.Unset)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownField), errors.Is(err, service.ErrUnknownHeader):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.sessionError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// Load runs the batched load and returns the reconciliation summary.
func (h *ImportHandler) Load(c *gin.Context) {
	result, err := h.imports.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		var incomplete *loader.MappingIncompleteError
		switch {
		case errors.As(err, &incomplete):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":                   incomplete.Error(),
				"missing_required_fields": incomplete.Missing,
			})
		default:
			h.sessionError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// Progress reports the cumulative completion percentage of the in-flight
// load.
func (h *ImportHandler) Progress(c *gin.Context) {
	percent, err := h.imports.Progress(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": percent})
}

// DeleteSession resets a session and discards its document.
func (h *ImportHandler) DeleteSession(c *gin.Context) {
	if err := h.imports.ResetSession(c.Param("id")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ImportHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLoadInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
