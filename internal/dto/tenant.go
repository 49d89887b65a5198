package dto

// CreateTenantRequest registers a business account.
type CreateTenantRequest struct {
	Name           string `json:"name" validate:"required"`
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
	Locale         string `json:"locale,omitempty"`
	TimeZone       string `json:"time_zone,omitempty"`
}

// UploadFAQRequest adds a knowledge-base entry for a tenant.
type UploadFAQRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid4"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content" validate:"required,min=1"`
}
