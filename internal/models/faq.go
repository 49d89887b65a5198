package models

import "time"

// FAQDocument is a tenant knowledge-base entry. The embedding column is a
// pgvector value and stays nil when no embedding API key is configured.
type FAQDocument struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FAQMatch is a retrieval result.
type FAQMatch struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}
