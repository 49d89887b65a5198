package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	AttachPaymentRef(ctx context.Context, req dto.AttachPaymentRefRequest) error
}

// BookingHandler wires booking endpoints.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create godoc
// @Summary Record a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// List godoc
// @Summary List bookings for a tenant
// @Tags Bookings
// @Produce json
// @Param tenant_id query string true "Tenant ID"
// @Param status query string false "Filter by status"
// @Param limit query int false "Max rows"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	filter := models.BookingFilter{
		TenantID: c.Query("tenant_id"),
		Limit:    limit,
	}
	if raw := c.Query("status"); raw != "" {
		status := models.BookingStatus(raw)
		filter.Status = &status
	}

	bookings, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// AttachPaymentRef godoc
// @Summary Link a Paystack reference to a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.AttachPaymentRefRequest true "Payment ref payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bookings/payment-ref [post]
func (h *BookingHandler) AttachPaymentRef(c *gin.Context) {
	var req dto.AttachPaymentRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment ref payload"))
		return
	}

	if err := h.service.AttachPaymentRef(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
