package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/models"
	"github.com/akotolabs/waflow/pkg/response"
)

type messageLogService interface {
	ListLogs(ctx context.Context, filter models.MessageLogFilter) ([]models.MessageLog, error)
}

// MessageLogHandler exposes the conversation audit log.
type MessageLogHandler struct {
	service messageLogService
}

// NewMessageLogHandler constructs the handler.
func NewMessageLogHandler(service messageLogService) *MessageLogHandler {
	return &MessageLogHandler{service: service}
}

// List godoc
// @Summary List audited conversation turns
// @Tags Messages
// @Produce json
// @Param id path string true "Tenant ID"
// @Param limit query int false "Max rows"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/messages [get]
func (h *MessageLogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := h.service.ListLogs(c.Request.Context(), models.MessageLogFilter{
		TenantID: c.Param("id"),
		Limit:    limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
