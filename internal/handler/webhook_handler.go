package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/pkg/config"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/jobs"
	"github.com/akotolabs/waflow/pkg/response"
)

// JobTypeInboundMessage labels queued WhatsApp messages.
const JobTypeInboundMessage = "whatsapp.inbound"

type inboundQueue interface {
	Enqueue(job jobs.Job) error
}

type paystackWebhookService interface {
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) error
}

type webhookMetrics interface {
	ObserveWebhookFailure(source string)
}

// WebhookHandler terminates provider callbacks: Meta webhook verification
// and delivery, and Paystack charge events. Inbound messages are acked
// immediately and processed off the request path by the worker queue.
type WebhookHandler struct {
	cfg      config.WhatsAppConfig
	queue    inboundQueue
	payments paystackWebhookService
	metrics  webhookMetrics
	logger   *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(cfg config.WhatsAppConfig, queue inboundQueue, payments paystackWebhookService, metrics webhookMetrics, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{cfg: cfg, queue: queue, payments: payments, metrics: metrics, logger: logger}
}

// VerifyWhatsApp godoc
// @Summary Meta webhook subscription handshake
// @Tags Webhooks
// @Produce plain
// @Param hub.mode query string true "Must be subscribe"
// @Param hub.verify_token query string true "Configured verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string
// @Failure 403 {object} response.Envelope
// @Router /webhooks/whatsapp [get]
func (h *WebhookHandler) VerifyWhatsApp(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.VerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	h.observeFailure("whatsapp")
	response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "webhook verification failed"))
}

// ReceiveWhatsApp godoc
// @Summary Receive Meta webhook deliveries
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /webhooks/whatsapp [post]
func (h *WebhookHandler) ReceiveWhatsApp(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable body"))
		return
	}

	// Signature check is enforced only when an app secret is configured.
	if h.cfg.AppSecret != "" && !h.verifyMetaSignature(body, c.GetHeader("X-Hub-Signature-256")) {
		h.observeFailure("whatsapp")
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidSignature, ""))
		return
	}

	var payload dto.WhatsAppWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "malformed webhook payload"))
		return
	}

	enqueued := 0
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			recipient := change.Value.Metadata.DisplayPhoneNumber
			for _, msg := range change.Value.Messages {
				text := msg.BodyText()
				if text == "" {
					continue
				}
				job := jobs.Job{
					ID:   uuid.NewString(),
					Type: JobTypeInboundMessage,
					Payload: dto.InboundMessage{
						From:      msg.From,
						Recipient: recipient,
						Body:      text,
					},
				}
				if err := h.queue.Enqueue(job); err != nil {
					h.logger.Error("failed to enqueue inbound message", zap.Error(err))
					h.observeFailure("whatsapp")
					continue
				}
				enqueued++
			}
		}
	}

	// Meta expects a 2xx regardless; retries are driven by non-2xx only.
	response.JSON(c, http.StatusOK, gin.H{"queued": enqueued}, nil)
}

// ReceivePaystack godoc
// @Summary Receive Paystack charge events
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /webhooks/paystack [post]
func (h *WebhookHandler) ReceivePaystack(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable body"))
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader("X-Paystack-Signature")); err != nil {
		h.observeFailure("paystack")
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}

func (h *WebhookHandler) verifyMetaSignature(body []byte, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.cfg.AppSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}

func (h *WebhookHandler) observeFailure(source string) {
	if h.metrics != nil {
		h.metrics.ObserveWebhookFailure(source)
	}
}
