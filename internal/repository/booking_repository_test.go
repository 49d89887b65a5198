package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/models"
)

var bookingCols = []string{"id", "tenant_id", "user_phone", "user_name", "start_time", "end_time", "status", "payment_status", "paystack_ref", "created_at", "updated_at"}

func TestBookingRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking := &models.Booking{
		TenantID:  "tenant-1",
		UserPhone: "+233201234567",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, models.PaymentUnpaid, booking.PaymentStatus)
}

func TestBookingRepositoryListActiveByDateExcludesCancelled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(bookingCols).
		AddRow("b-1", "tenant-1", "+233", nil, now, now.Add(time.Hour), "confirmed", "paid", nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("DATE(start_time) = $2 AND status != $3")).
		WithArgs("tenant-1", "2026-09-15", models.BookingCancelled).
		WillReturnRows(rows)

	bookings, err := repo.ListActiveByDate(context.Background(), "tenant-1", "2026-09-15")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b-1", bookings[0].ID)
}

func TestBookingRepositoryCountOverlappingUsesHalfOpenInterval(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	start := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("start_time < $3 AND $4 < end_time")).
		WithArgs("tenant-1", models.BookingCancelled, end, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOverlapping(context.Background(), "tenant-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBookingRepositoryConfirmByPaystackRef(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	now := time.Now()
	ref := "ref-1"
	rows := sqlmock.NewRows(bookingCols).
		AddRow("b-1", "tenant-1", "+233", nil, now, now.Add(time.Hour), "confirmed", "paid", &ref, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $1, payment_status = $2")).
		WithArgs(models.BookingConfirmed, models.PaymentPaid, sqlmock.AnyArg(), "ref-1").
		WillReturnRows(rows)

	booking, err := repo.ConfirmByPaystackRef(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", booking.TenantID)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
}

func TestBookingRepositoryConfirmByUnknownRefPassesErrNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ConfirmByPaystackRef(context.Background(), "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestBookingRepositoryCancelStalePendingReturnsTouchedTenants(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	cutoff := time.Now().Add(-24 * time.Hour)
	rows := sqlmock.NewRows([]string{"tenant_id"}).AddRow("tenant-1").AddRow("tenant-2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT tenant_id FROM cancelled")).
		WithArgs(models.BookingCancelled, sqlmock.AnyArg(), models.BookingPending, models.PaymentUnpaid, cutoff).
		WillReturnRows(rows)

	tenantIDs, err := repo.CancelStalePending(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant-1", "tenant-2"}, tenantIDs)
}
