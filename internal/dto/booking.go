package dto

import "time"

// CreateBookingRequest records a reservation. No slot re-validation happens
// at write time unless the conflict guard is enabled.
type CreateBookingRequest struct {
	TenantID  string    `json:"tenant_id" validate:"required,uuid4"`
	UserPhone string    `json:"user_phone" validate:"required"`
	UserName  *string   `json:"user_name,omitempty"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Status    string    `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// AttachPaymentRefRequest links a Paystack reference to a booking.
type AttachPaymentRefRequest struct {
	BookingID   string `json:"booking_id" validate:"required,uuid4"`
	PaystackRef string `json:"paystack_ref" validate:"required"`
}

// InitiatePaymentRequest starts a hosted Paystack checkout.
type InitiatePaymentRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	Amount   int64          `json:"amount" validate:"required,min=1"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// InitiatePaymentResponse returns the hosted payment URL and reference.
type InitiatePaymentResponse struct {
	URL       string `json:"url"`
	Reference string `json:"reference"`
}
