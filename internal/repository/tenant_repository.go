package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/akotolabs/waflow/internal/models"
)

const tenantColumns = "id, name, whatsapp_number, locale, time_zone, created_at, updated_at"

// TenantRepository persists business accounts.
type TenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository constructs a tenant repository.
func NewTenantRepository(db *sqlx.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a tenant.
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	const query = `INSERT INTO tenants (id, name, whatsapp_number, locale, time_zone, created_at, updated_at)
VALUES (:id, :name, :whatsapp_number, :locale, :time_zone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// List returns tenants with total count for pagination.
func (r *TenantRepository) List(ctx context.Context, filter models.TenantFilter) ([]models.Tenant, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	where := "1=1"
	args := []interface{}{}
	if filter.Search != "" {
		where = "(name ILIKE $1 OR whatsapp_number ILIKE $1)"
		args = append(args, "%"+filter.Search+"%")
	}

	query := fmt.Sprintf("SELECT %s FROM tenants WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", tenantColumns, where, size, offset)
	var tenants []models.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM tenants WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}
	return tenants, total, nil
}

// GetByID fetches a tenant.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.GetContext(ctx, &tenant, fmt.Sprintf("SELECT %s FROM tenants WHERE id = $1", tenantColumns), id); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByWhatsAppNumber maps an inbound recipient number to its tenant.
func (r *TenantRepository) FindByWhatsAppNumber(ctx context.Context, number string) (*models.Tenant, error) {
	var tenant models.Tenant
	query := fmt.Sprintf("SELECT %s FROM tenants WHERE whatsapp_number = $1 LIMIT 1", tenantColumns)
	if err := r.db.GetContext(ctx, &tenant, query, number); err != nil {
		return nil, err
	}
	return &tenant, nil
}
