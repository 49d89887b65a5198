package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	"github.com/akotolabs/waflow/internal/paystack"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

type paymentGateway interface {
	InitializeTransaction(ctx context.Context, email string, amount int64, metadata map[string]any) (*paystack.InitResult, error)
	VerifySignature(rawBody []byte, headerSig string) bool
}

type paymentBookingStore interface {
	AttachPaystackRef(ctx context.Context, bookingID, ref string) error
	ConfirmByPaystackRef(ctx context.Context, ref string) (*models.Booking, error)
}

// PaymentService drives the Paystack checkout flow: initialize a hosted
// payment, then confirm the booking when the charge webhook lands.
type PaymentService struct {
	gateway   paymentGateway
	bookings  paymentBookingStore
	slots     slotInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService builds a PaymentService.
func NewPaymentService(gateway paymentGateway, bookings paymentBookingStore, slots slotInvalidator, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{gateway: gateway, bookings: bookings, slots: slots, validator: validate, logger: logger}
}

// Initiate creates a hosted checkout page. When the metadata carries a
// booking_id the reference is attached to that booking immediately, so a
// later charge.success can resolve it.
func (s *PaymentService) Initiate(ctx context.Context, req dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	result, err := s.gateway.InitializeTransaction(ctx, req.Email, req.Amount, req.Metadata)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPaymentInit.Code, appErrors.ErrPaymentInit.Status, "payment initialization failed")
	}

	if bookingID, ok := req.Metadata["booking_id"].(string); ok && bookingID != "" {
		if err := s.bookings.AttachPaystackRef(ctx, bookingID, result.Reference); err != nil {
			s.logger.Error("failed to attach payment ref to booking",
				zap.String("booking_id", bookingID), zap.String("reference", result.Reference), zap.Error(err))
		}
	}

	return &dto.InitiatePaymentResponse{URL: result.URL, Reference: result.Reference}, nil
}

// HandleWebhook verifies and applies a Paystack event. The raw body must be
// the exact bytes Paystack sent; only charge.success mutates state.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !s.gateway.VerifySignature(rawBody, signature) {
		return appErrors.Clone(appErrors.ErrInvalidSignature, "")
	}

	var event dto.PaystackEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed webhook payload")
	}

	if event.Event != "charge.success" {
		s.logger.Debug("ignoring paystack event", zap.String("event", event.Event))
		return nil
	}
	if event.Data.Reference == "" {
		return appErrors.Clone(appErrors.ErrValidation, "charge event missing reference")
	}

	booking, err := s.bookings.ConfirmByPaystackRef(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Charges can land for references we never issued (or retries
			// after the booking was cancelled). Acknowledge and move on.
			s.logger.Warn("charge.success for unknown reference", zap.String("reference", event.Data.Reference))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm booking")
	}

	s.logger.Info("booking confirmed by payment",
		zap.String("booking_id", booking.ID),
		zap.String("tenant_id", booking.TenantID),
		zap.String("reference", event.Data.Reference))

	if s.slots != nil {
		if err := s.slots.InvalidateSlots(ctx, booking.TenantID); err != nil {
			s.logger.Warn("slot cache invalidation failed", zap.String("tenant_id", booking.TenantID), zap.Error(err))
		}
	}
	return nil
}
