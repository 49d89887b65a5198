package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/response"
)

type faqService interface {
	Upload(ctx context.Context, req dto.UploadFAQRequest) error
	List(ctx context.Context, tenantID string) ([]models.FAQDocument, error)
	Search(ctx context.Context, tenantID, query string) (*models.FAQMatch, error)
}

// FAQHandler wires knowledge-base endpoints.
type FAQHandler struct {
	service faqService
}

// NewFAQHandler constructs the handler.
func NewFAQHandler(service faqService) *FAQHandler {
	return &FAQHandler{service: service}
}

// Upload godoc
// @Summary Add a knowledge-base document
// @Tags FAQ
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param payload body dto.UploadFAQRequest true "FAQ payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tenants/{id}/faqs [post]
func (h *FAQHandler) Upload(c *gin.Context) {
	var req dto.UploadFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faq payload"))
		return
	}
	req.TenantID = c.Param("id")

	if err := h.service.Upload(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"status": "stored"})
}

// List godoc
// @Summary List knowledge-base documents
// @Tags FAQ
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/faqs [get]
func (h *FAQHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Search godoc
// @Summary Query the knowledge base
// @Tags FAQ
// @Produce json
// @Param id path string true "Tenant ID"
// @Param q query string true "Question text"
// @Success 200 {object} response.Envelope
// @Router /tenants/{id}/faqs/search [get]
func (h *FAQHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "q is required"))
		return
	}

	match, err := h.service.Search(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if match == nil {
		response.JSON(c, http.StatusOK, gin.H{"match": nil}, nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"match": match}, nil)
}
