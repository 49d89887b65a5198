package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	AttachPaystackRef(ctx context.Context, bookingID, ref string) error
	CountOverlapping(ctx context.Context, tenantID string, start, end time.Time) (int, error)
	CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error)
}

type slotInvalidator interface {
	InvalidateSlots(ctx context.Context, tenantID string) error
}

// BookingService records and lists reservations. Slot availability is
// advisory at write time: the optional conflict guard rejects overlapping
// bookings, otherwise writes are accepted as-is.
type BookingService struct {
	repo          bookingStore
	slots         slotInvalidator
	conflictGuard bool
	expireAfter   time.Duration
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewBookingService builds a BookingService.
func NewBookingService(repo bookingStore, slots slotInvalidator, conflictGuard bool, expireAfter time.Duration, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:          repo,
		slots:         slots,
		conflictGuard: conflictGuard,
		expireAfter:   expireAfter,
		validator:     validate,
		logger:        logger,
	}
}

// Create records a booking and invalidates the tenant's cached slots.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	if s.conflictGuard {
		count, err := s.repo.CountOverlapping(ctx, req.TenantID, req.StartTime, req.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conflict check failed")
		}
		if count > 0 {
			return nil, appErrors.Clone(appErrors.ErrBookingConflict, "requested time overlaps an existing booking")
		}
	}

	booking := &models.Booking{
		TenantID:  req.TenantID,
		UserPhone: req.UserPhone,
		UserName:  req.UserName,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.BookingStatus(req.Status),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.invalidate(ctx, booking.TenantID)
	return booking, nil
}

// List returns a tenant's bookings.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	if filter.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	bookings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// AttachPaymentRef links a Paystack reference to a booking so the webhook
// can later confirm it.
func (s *BookingService) AttachPaymentRef(ctx context.Context, req dto.AttachPaymentRefRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment ref payload")
	}
	if err := s.repo.AttachPaystackRef(ctx, req.BookingID, req.PaystackRef); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach payment ref")
	}
	return nil
}

// ExpireStalePending cancels unpaid pending bookings older than the
// configured window. Wired to the cron scheduler when enabled. The
// cancellations free slots, so every touched tenant's cache is
// invalidated like any other booking mutation.
func (s *BookingService) ExpireStalePending(ctx context.Context) {
	if s.expireAfter <= 0 {
		return
	}
	cutoff := time.Now().UTC().Add(-s.expireAfter)
	tenantIDs, err := s.repo.CancelStalePending(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to expire stale bookings", zap.Error(err))
		return
	}
	if len(tenantIDs) == 0 {
		return
	}
	for _, tenantID := range tenantIDs {
		s.invalidate(ctx, tenantID)
	}
	s.logger.Info("expired stale pending bookings", zap.Int("tenants", len(tenantIDs)))
}

func (s *BookingService) invalidate(ctx context.Context, tenantID string) {
	if s.slots == nil {
		return
	}
	if err := s.slots.InvalidateSlots(ctx, tenantID); err != nil {
		s.logger.Warn("slot cache invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}
