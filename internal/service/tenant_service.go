package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

const (
	defaultLocale   = "en_GH"
	defaultTimeZone = "Africa/Accra"
)

type tenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	List(ctx context.Context, filter models.TenantFilter) ([]models.Tenant, int, error)
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	FindByWhatsAppNumber(ctx context.Context, number string) (*models.Tenant, error)
}

// TenantService manages business accounts.
type TenantService struct {
	repo      tenantStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTenantService builds a TenantService.
func NewTenantService(repo tenantStore, validate *validator.Validate, logger *zap.Logger) *TenantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{repo: repo, validator: validate, logger: logger}
}

// Create registers a tenant, defaulting locale and time zone.
func (s *TenantService) Create(ctx context.Context, req dto.CreateTenantRequest) (*models.Tenant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tenant payload")
	}

	tenant := &models.Tenant{
		Name:           req.Name,
		WhatsAppNumber: req.WhatsAppNumber,
		Locale:         req.Locale,
		TimeZone:       req.TimeZone,
	}
	if tenant.Locale == "" {
		tenant.Locale = defaultLocale
	}
	if tenant.TimeZone == "" {
		tenant.TimeZone = defaultTimeZone
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tenant")
	}
	s.logger.Info("tenant created", zap.String("tenant_id", tenant.ID), zap.String("name", tenant.Name))
	return tenant, nil
}

// List returns tenants with the total count for pagination.
func (s *TenantService) List(ctx context.Context, filter models.TenantFilter) ([]models.Tenant, int, error) {
	tenants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tenants")
	}
	return tenants, total, nil
}

// Get fetches a single tenant.
func (s *TenantService) Get(ctx context.Context, id string) (*models.Tenant, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant id is required")
	}
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tenant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch tenant")
	}
	return tenant, nil
}
