package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akotolabs/waflow/internal/models"
)

// FAQRepository persists tenant knowledge-base documents. The embedding
// column is a pgvector value.
type FAQRepository struct {
	db *sqlx.DB
}

// NewFAQRepository constructs a FAQ repository.
func NewFAQRepository(db *sqlx.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// Create inserts a document with an optional embedding.
func (r *FAQRepository) Create(ctx context.Context, doc *models.FAQDocument, embedding []float64) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO faq_documents (id, tenant_id, title, content, embedding, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	var emb interface{}
	if len(embedding) > 0 {
		emb = vectorLiteral(embedding)
	}
	if _, err := r.db.ExecContext(ctx, query, doc.ID, doc.TenantID, doc.Title, doc.Content, emb, doc.UpdatedAt); err != nil {
		return fmt.Errorf("create faq document: %w", err)
	}
	return nil
}

// List returns a tenant's documents, newest first.
func (r *FAQRepository) List(ctx context.Context, tenantID string) ([]models.FAQDocument, error) {
	const query = `SELECT id, tenant_id, title, content, updated_at
FROM faq_documents WHERE tenant_id = $1 ORDER BY updated_at DESC`
	var docs []models.FAQDocument
	if err := r.db.SelectContext(ctx, &docs, query, tenantID); err != nil {
		return nil, fmt.Errorf("list faq documents: %w", err)
	}
	return docs, nil
}

// BestVectorMatch returns the closest document content by cosine distance
// and its similarity score. sql.ErrNoRows passes through when the tenant has
// no embedded documents.
func (r *FAQRepository) BestVectorMatch(ctx context.Context, tenantID string, embedding []float64) (string, float64, error) {
	const query = `SELECT content, 1 - (embedding <=> $1::vector) AS score
FROM faq_documents
WHERE tenant_id = $2 AND embedding IS NOT NULL
ORDER BY embedding <=> $1::vector ASC
LIMIT 1`
	var row struct {
		Content string  `db:"content"`
		Score   float64 `db:"score"`
	}
	if err := r.db.GetContext(ctx, &row, query, vectorLiteral(embedding), tenantID); err != nil {
		return "", 0, err
	}
	return row.Content, row.Score, nil
}

// BestLikeMatch is the retrieval fallback when embeddings are unavailable.
func (r *FAQRepository) BestLikeMatch(ctx context.Context, tenantID, query string) (string, error) {
	needle := strings.ToLower(query)
	if len(needle) > 256 {
		needle = needle[:256]
	}
	const q = `SELECT content FROM faq_documents
WHERE tenant_id = $1 AND LOWER(content) LIKE $2
ORDER BY updated_at DESC LIMIT 1`
	var content string
	if err := r.db.GetContext(ctx, &content, q, tenantID, "%"+needle+"%"); err != nil {
		return "", err
	}
	return content, nil
}

// vectorLiteral renders an embedding as a pgvector input literal.
func vectorLiteral(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
