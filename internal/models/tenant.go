package models

import "time"

// Tenant is a business account on the platform. Inbound WhatsApp traffic is
// mapped to a tenant through its registered WhatsApp number.
type Tenant struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	WhatsAppNumber string    `db:"whatsapp_number" json:"whatsapp_number"`
	Locale         string    `db:"locale" json:"locale"`
	TimeZone       string    `db:"time_zone" json:"time_zone"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TenantFilter captures listing criteria for tenants.
type TenantFilter struct {
	Search   string
	Page     int
	PageSize int
}
