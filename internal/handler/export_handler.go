package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/models"
	"github.com/akotolabs/waflow/internal/service"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/response"
)

type exportService interface {
	ExportBookings(ctx context.Context, filter models.BookingFilter, format service.ExportFormat) (*service.ExportResult, error)
	ExportMessageLogs(ctx context.Context, filter models.MessageLogFilter, format service.ExportFormat) (*service.ExportResult, error)
	Open(token string) (*os.File, string, error)
}

// ExportHandler wires CSV/PDF export endpoints and signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Bookings godoc
// @Summary Export a tenant's bookings
// @Tags Exports
// @Produce json
// @Param id path string true "Tenant ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/exports/bookings [post]
func (h *ExportHandler) Bookings(c *gin.Context) {
	filter := models.BookingFilter{TenantID: c.Param("id"), Limit: 500}
	if raw := c.Query("status"); raw != "" {
		status := models.BookingStatus(raw)
		filter.Status = &status
	}

	result, err := h.service.ExportBookings(c.Request.Context(), filter, exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MessageLogs godoc
// @Summary Export a tenant's conversation audit log
// @Tags Exports
// @Produce json
// @Param id path string true "Tenant ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param limit query int false "Max rows"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/exports/messages [post]
func (h *ExportHandler) MessageLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))
	filter := models.MessageLogFilter{TenantID: c.Param("id"), Limit: limit}

	result, err := h.service.ExportMessageLogs(c.Request.Context(), filter, exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download an export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, relPath, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	stat, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.DataFromReader(http.StatusOK, stat.Size(), "application/octet-stream", file, nil)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	if c.DefaultQuery("format", "csv") == "pdf" {
		return service.FormatPDF
	}
	return service.FormatCSV
}
