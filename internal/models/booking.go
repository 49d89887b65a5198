package models

import "time"

// BookingStatus enumerates the booking lifecycle.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks the Paystack side of a booking.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Booking is a reservation held by a WhatsApp user against a tenant.
// Bookings are never hard-deleted; cancellation is a status change.
type Booking struct {
	ID            string        `db:"id" json:"id"`
	TenantID      string        `db:"tenant_id" json:"tenant_id"`
	UserPhone     string        `db:"user_phone" json:"user_phone"`
	UserName      *string       `db:"user_name" json:"user_name,omitempty"`
	StartTime     time.Time     `db:"start_time" json:"start_time"`
	EndTime       time.Time     `db:"end_time" json:"end_time"`
	Status        BookingStatus `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PaystackRef   *string       `db:"paystack_ref" json:"paystack_ref,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	TenantID string
	Status   *BookingStatus
	Limit    int
}
