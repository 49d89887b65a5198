package dto

import (
	"time"

	"github.com/akotolabs/waflow/internal/models"
)

// RuleInput is one weekday entry of a SetRulesRequest.
type RuleInput struct {
	Weekday     int    `json:"weekday" validate:"min=0,max=6"`
	OpenTime    string `json:"open_time" validate:"required"`
	CloseTime   string `json:"close_time" validate:"required"`
	SlotMinutes int    `json:"slot_minutes" validate:"required,min=1"`
}

// SetRulesRequest replaces the rules for the listed weekdays atomically.
type SetRulesRequest struct {
	TenantID string      `json:"tenant_id" validate:"required,uuid4"`
	Rules    []RuleInput `json:"rules" validate:"required,min=1,dive"`
}

// ClosedDateRequest closes a calendar date for a tenant.
type ClosedDateRequest struct {
	TenantID string  `json:"tenant_id" validate:"required,uuid4"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Reason   *string `json:"reason,omitempty"`
}

// SlotResponse is one free bookable window.
type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewSlotResponses maps computed slots onto the wire shape. Always returns
// a non-nil slice so empty days serialise as [] rather than null.
func NewSlotResponses(slots []models.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{Start: s.Start, End: s.End})
	}
	return out
}
