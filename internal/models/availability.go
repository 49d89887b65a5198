package models

import "time"

// AvailabilityRule is the recurring open/close schedule for one weekday.
// Weekday follows time.Weekday numbering: 0=Sunday .. 6=Saturday.
// Unique per (tenant_id, weekday); writes are upserts.
type AvailabilityRule struct {
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	Weekday     int       `db:"weekday" json:"weekday"`
	OpenTime    string    `db:"open_time" json:"open_time"`
	CloseTime   string    `db:"close_time" json:"close_time"`
	SlotMinutes int       `db:"slot_minutes" json:"slot_minutes"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UnavailableDate marks a specific calendar date as fully closed,
// overriding the weekday rule.
type UnavailableDate struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Date      string    `db:"date" json:"date"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Slot is a derived, bookable time window. Never persisted.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
