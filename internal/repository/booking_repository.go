package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akotolabs/waflow/internal/models"
)

// BookingRepository persists reservations.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.BookingPending
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = models.PaymentUnpaid
	}
	const query = `INSERT INTO bookings (id, tenant_id, user_phone, user_name, start_time, end_time, status, payment_status, paystack_ref, created_at, updated_at)
VALUES (:id, :tenant_id, :user_phone, :user_name, :start_time, :end_time, :status, :payment_status, :paystack_ref, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// List returns bookings for a tenant, most recent first.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT id, tenant_id, user_phone, user_name, start_time, end_time, status, payment_status, paystack_ref, created_at, updated_at
FROM bookings WHERE tenant_id = $1`
	args := []interface{}{filter.TenantID}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	query += fmt.Sprintf(" ORDER BY start_time DESC NULLS LAST, created_at DESC LIMIT %d", limit)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ListActiveByDate returns non-cancelled bookings starting on the given
// calendar date. Feeds the slot generator's overlap filter.
func (r *BookingRepository) ListActiveByDate(ctx context.Context, tenantID, date string) ([]models.Booking, error) {
	const query = `SELECT id, tenant_id, user_phone, user_name, start_time, end_time, status, payment_status, paystack_ref, created_at, updated_at
FROM bookings WHERE tenant_id = $1 AND DATE(start_time) = $2 AND status != $3 ORDER BY start_time`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, tenantID, date, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("list bookings for date: %w", err)
	}
	return bookings, nil
}

// AttachPaystackRef links a payment reference to an existing booking.
func (r *BookingRepository) AttachPaystackRef(ctx context.Context, bookingID, ref string) error {
	const query = `UPDATE bookings SET paystack_ref = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, ref, time.Now().UTC(), bookingID); err != nil {
		return fmt.Errorf("attach paystack ref: %w", err)
	}
	return nil
}

// ConfirmByPaystackRef marks the booking behind a successful charge as paid
// and confirmed, returning the affected tenant for cache invalidation.
func (r *BookingRepository) ConfirmByPaystackRef(ctx context.Context, ref string) (*models.Booking, error) {
	const query = `UPDATE bookings SET status = $1, payment_status = $2, updated_at = $3 WHERE paystack_ref = $4
RETURNING id, tenant_id, user_phone, user_name, start_time, end_time, status, payment_status, paystack_ref, created_at, updated_at`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, models.BookingConfirmed, models.PaymentPaid, time.Now().UTC(), ref); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountOverlapping counts non-cancelled bookings intersecting [start,end).
// Strict half-open overlap: touching boundaries do not count.
func (r *BookingRepository) CountOverlapping(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings
WHERE tenant_id = $1 AND status != $2 AND start_time < $3 AND $4 < end_time`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, models.BookingCancelled, end, start); err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return count, nil
}

// CancelStalePending cancels unpaid pending bookings created before cutoff
// and returns the tenants whose availability changed, so callers can
// invalidate their cached slots. Rows are never deleted.
func (r *BookingRepository) CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	const query = `WITH cancelled AS (
	UPDATE bookings SET status = $1, updated_at = $2
	WHERE status = $3 AND payment_status = $4 AND created_at < $5
	RETURNING tenant_id
)
SELECT DISTINCT tenant_id FROM cancelled`
	var tenantIDs []string
	if err := r.db.SelectContext(ctx, &tenantIDs, query, models.BookingCancelled, time.Now().UTC(), models.BookingPending, models.PaymentUnpaid, cutoff); err != nil {
		return nil, fmt.Errorf("cancel stale pending bookings: %w", err)
	}
	return tenantIDs, nil
}
