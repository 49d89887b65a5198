package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akotolabs/waflow/internal/models"
)

// MessageRepository persists the conversation audit log.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a message repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends an audit entry.
func (r *MessageRepository) Create(ctx context.Context, log *models.MessageLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages_audit (id, tenant_id, user_phone, direction, body, intent, confidence, tool_called, created_at)
VALUES (:id, :tenant_id, :user_phone, :direction, :body, :intent, :confidence, :tool_called, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create message log: %w", err)
	}
	return nil
}

// List returns audit entries for a tenant, newest first.
func (r *MessageRepository) List(ctx context.Context, filter models.MessageLogFilter) ([]models.MessageLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, tenant_id, user_phone, direction, body, intent, confidence, tool_called, created_at
FROM messages_audit WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var logs []models.MessageLog
	if err := r.db.SelectContext(ctx, &logs, query, filter.TenantID); err != nil {
		return nil, fmt.Errorf("list message logs: %w", err)
	}
	return logs, nil
}
