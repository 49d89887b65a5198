package models

import "time"

// MessageDirection marks audit entries as inbound or outbound.
type MessageDirection string

const (
	DirectionIn  MessageDirection = "in"
	DirectionOut MessageDirection = "out"
)

// Intent labels produced by classification.
const (
	IntentFAQ            = "FAQ"
	IntentBookingStart   = "BOOKING_START"
	IntentPaymentRequest = "PAYMENT_REQUEST"
	IntentSmalltalk      = "SMALLTALK"
	IntentHandoff        = "handoff"
)

// MessageLog is one audited conversation turn.
type MessageLog struct {
	ID         string           `db:"id" json:"id"`
	TenantID   string           `db:"tenant_id" json:"tenant_id"`
	UserPhone  string           `db:"user_phone" json:"user_phone"`
	Direction  MessageDirection `db:"direction" json:"direction"`
	Body       string           `db:"body" json:"body"`
	Intent     *string          `db:"intent" json:"intent,omitempty"`
	Confidence *float64         `db:"confidence" json:"confidence,omitempty"`
	ToolCalled *string          `db:"tool_called" json:"tool_called,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// MessageLogFilter narrows audit listings.
type MessageLogFilter struct {
	TenantID string
	Limit    int
}
