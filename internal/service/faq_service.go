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

// Matches below this score are treated as "no answer" and handed to a human.
const faqMinConfidence = 0.6

type faqStore interface {
	Create(ctx context.Context, doc *models.FAQDocument, embedding []float64) error
	List(ctx context.Context, tenantID string) ([]models.FAQDocument, error)
	BestVectorMatch(ctx context.Context, tenantID string, embedding []float64) (string, float64, error)
	BestLikeMatch(ctx context.Context, tenantID, query string) (string, error)
}

type textEmbedder interface {
	Enabled() bool
	Embed(ctx context.Context, text string) ([]float64, error)
}

// FAQService manages the tenant knowledge base and answers questions from
// it via vector retrieval with a substring fallback.
type FAQService struct {
	repo      faqStore
	embedder  textEmbedder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFAQService builds a FAQService.
func NewFAQService(repo faqStore, embedder textEmbedder, validate *validator.Validate, logger *zap.Logger) *FAQService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FAQService{repo: repo, embedder: embedder, validator: validate, logger: logger}
}

// Upload stores a document; the embedding is best-effort.
func (s *FAQService) Upload(ctx context.Context, req dto.UploadFAQRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faq payload")
	}
	title := req.Title
	if title == "" {
		title = "FAQ"
	}

	var embedding []float64
	if s.embedder != nil && s.embedder.Enabled() {
		emb, err := s.embedder.Embed(ctx, req.Content)
		if err != nil {
			s.logger.Warn("faq embedding failed, storing without vector", zap.Error(err))
		} else {
			embedding = emb
		}
	}

	doc := &models.FAQDocument{TenantID: req.TenantID, Title: title, Content: req.Content}
	if err := s.repo.Create(ctx, doc, embedding); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store faq")
	}
	return nil
}

// List returns a tenant's documents.
func (s *FAQService) List(ctx context.Context, tenantID string) ([]models.FAQDocument, error) {
	if tenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	docs, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faqs")
	}
	return docs, nil
}

// Search returns the best answer for a query, or nil when nothing clears
// the confidence floor. Vector search is preferred; any failure there
// degrades to the substring fallback.
func (s *FAQService) Search(ctx context.Context, tenantID, query string) (*models.FAQMatch, error) {
	if s.embedder != nil && s.embedder.Enabled() {
		if match := s.vectorSearch(ctx, tenantID, query); match != nil {
			return match, nil
		}
	}

	content, err := s.repo.BestLikeMatch(ctx, tenantID, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "faq lookup failed")
	}
	return &models.FAQMatch{Answer: content, Confidence: faqMinConfidence}, nil
}

func (s *FAQService) vectorSearch(ctx context.Context, tenantID, query string) *models.FAQMatch {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil || len(embedding) == 0 {
		if err != nil {
			s.logger.Warn("query embedding failed, falling back to substring search", zap.Error(err))
		}
		return nil
	}
	content, score, err := s.repo.BestVectorMatch(ctx, tenantID, embedding)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("vector search failed, falling back to substring search", zap.Error(err))
		}
		return nil
	}
	if score < faqMinConfidence {
		return nil
	}
	confidence := score
	if confidence > 0.95 {
		confidence = 0.95
	}
	return &models.FAQMatch{Answer: content, Confidence: confidence}
}
