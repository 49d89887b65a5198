package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/response"
)

type availabilityService interface {
	ComputeSlots(ctx context.Context, tenantID, date, tz string) ([]models.Slot, error)
	SetRules(ctx context.Context, req dto.SetRulesRequest) error
	ListRules(ctx context.Context, tenantID string) ([]models.AvailabilityRule, error)
	CloseDate(ctx context.Context, req dto.ClosedDateRequest) error
	ReopenDate(ctx context.Context, tenantID, date string) error
	ListClosedDates(ctx context.Context, tenantID string) ([]models.UnavailableDate, error)
}

// AvailabilityHandler wires slot and schedule endpoints.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// GetSlots godoc
// @Summary Compute free slots for a date
// @Tags Availability
// @Produce json
// @Param id path string true "Tenant ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param tz query string false "IANA time zone override"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tenants/{id}/slots [get]
func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	slots, err := h.service.ComputeSlots(c.Request.Context(), c.Param("id"), c.Query("date"), c.Query("tz"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSlotResponses(slots), nil)
}

// SetRules godoc
// @Summary Replace weekday availability rules
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param payload body dto.SetRulesRequest true "Rules payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tenants/{id}/availability/rules [put]
func (h *AvailabilityHandler) SetRules(c *gin.Context) {
	var req dto.SetRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rules payload"))
		return
	}
	req.TenantID = c.Param("id")

	if err := h.service.SetRules(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListRules godoc
// @Summary List weekday availability rules
// @Tags Availability
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/availability/rules [get]
func (h *AvailabilityHandler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// CloseDate godoc
// @Summary Mark a date as closed
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param payload body dto.ClosedDateRequest true "Closed date payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tenants/{id}/availability/closed-dates [post]
func (h *AvailabilityHandler) CloseDate(c *gin.Context) {
	var req dto.ClosedDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid closed-date payload"))
		return
	}
	req.TenantID = c.Param("id")

	if err := h.service.CloseDate(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReopenDate godoc
// @Summary Remove a closed-date exception
// @Tags Availability
// @Produce json
// @Param id path string true "Tenant ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204 {object} response.Envelope
// @Router /tenants/{id}/availability/closed-dates/{date} [delete]
func (h *AvailabilityHandler) ReopenDate(c *gin.Context) {
	if err := h.service.ReopenDate(c.Request.Context(), c.Param("id"), c.Param("date")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListClosedDates godoc
// @Summary List closed dates
// @Tags Availability
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/availability/closed-dates [get]
func (h *AvailabilityHandler) ListClosedDates(c *gin.Context) {
	dates, err := h.service.ListClosedDates(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}
