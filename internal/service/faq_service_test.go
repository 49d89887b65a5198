package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
)

type faqStoreStub struct {
	created       *models.FAQDocument
	embedding     []float64
	vectorContent string
	vectorScore   float64
	vectorErr     error
	likeContent   string
	likeErr       error
}

func (s *faqStoreStub) Create(ctx context.Context, doc *models.FAQDocument, embedding []float64) error {
	s.created = doc
	s.embedding = embedding
	return nil
}

func (s *faqStoreStub) List(ctx context.Context, tenantID string) ([]models.FAQDocument, error) {
	return nil, nil
}

func (s *faqStoreStub) BestVectorMatch(ctx context.Context, tenantID string, embedding []float64) (string, float64, error) {
	return s.vectorContent, s.vectorScore, s.vectorErr
}

func (s *faqStoreStub) BestLikeMatch(ctx context.Context, tenantID, query string) (string, error) {
	return s.likeContent, s.likeErr
}

type embedderStub struct {
	enabled bool
	vector  []float64
	err     error
}

func (s *embedderStub) Enabled() bool { return s.enabled }

func (s *embedderStub) Embed(ctx context.Context, text string) ([]float64, error) {
	return s.vector, s.err
}

func TestFAQUploadStoresEmbeddingBestEffort(t *testing.T) {
	store := &faqStoreStub{}
	svc := NewFAQService(store, &embedderStub{enabled: true, vector: []float64{0.1, 0.2}}, nil, nil)

	err := svc.Upload(context.Background(), dto.UploadFAQRequest{
		TenantID: testTenantID,
		Content:  "We open at 9am.",
	})
	require.NoError(t, err)
	require.NotNil(t, store.created)
	assert.Equal(t, "FAQ", store.created.Title)
	assert.Equal(t, []float64{0.1, 0.2}, store.embedding)
}

func TestFAQUploadSurvivesEmbeddingFailure(t *testing.T) {
	store := &faqStoreStub{}
	svc := NewFAQService(store, &embedderStub{enabled: true, err: errors.New("rate limited")}, nil, nil)

	err := svc.Upload(context.Background(), dto.UploadFAQRequest{TenantID: testTenantID, Content: "hello"})
	require.NoError(t, err)
	assert.Nil(t, store.embedding)
}

func TestFAQSearchVectorMatch(t *testing.T) {
	store := &faqStoreStub{vectorContent: "We open at 9am.", vectorScore: 0.82}
	svc := NewFAQService(store, &embedderStub{enabled: true, vector: []float64{0.5}}, nil, nil)

	match, err := svc.Search(context.Background(), testTenantID, "opening hours?")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "We open at 9am.", match.Answer)
	assert.InDelta(t, 0.82, match.Confidence, 1e-9)
}

func TestFAQSearchClampsConfidence(t *testing.T) {
	store := &faqStoreStub{vectorContent: "answer", vectorScore: 0.99}
	svc := NewFAQService(store, &embedderStub{enabled: true, vector: []float64{0.5}}, nil, nil)

	match, err := svc.Search(context.Background(), testTenantID, "q")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.InDelta(t, 0.95, match.Confidence, 1e-9)
}

func TestFAQSearchLowScoreFallsBackToLike(t *testing.T) {
	store := &faqStoreStub{vectorContent: "weak", vectorScore: 0.4, likeContent: "substring hit"}
	svc := NewFAQService(store, &embedderStub{enabled: true, vector: []float64{0.5}}, nil, nil)

	match, err := svc.Search(context.Background(), testTenantID, "q")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "substring hit", match.Answer)
	assert.InDelta(t, 0.6, match.Confidence, 1e-9)
}

func TestFAQSearchNoMatchReturnsNil(t *testing.T) {
	store := &faqStoreStub{vectorErr: sql.ErrNoRows, likeErr: sql.ErrNoRows}
	svc := NewFAQService(store, &embedderStub{enabled: true, vector: []float64{0.5}}, nil, nil)

	match, err := svc.Search(context.Background(), testTenantID, "q")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFAQSearchWithoutEmbedderUsesLike(t *testing.T) {
	store := &faqStoreStub{likeContent: "like answer"}
	svc := NewFAQService(store, &embedderStub{}, nil, nil)

	match, err := svc.Search(context.Background(), testTenantID, "q")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "like answer", match.Answer)
}
