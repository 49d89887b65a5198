package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/pkg/config"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
	"github.com/akotolabs/waflow/pkg/jobs"
)

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type paystackServiceStub struct {
	body      []byte
	signature string
	err       error
}

func (p *paystackServiceStub) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	p.body = rawBody
	p.signature = signature
	return p.err
}

const metaPayload = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"id": "entry-1",
		"changes": [{
			"field": "messages",
			"value": {
				"metadata": {"display_phone_number": "+233550000000", "phone_number_id": "pn-1"},
				"messages": [
					{"from": "+233201234567", "type": "text", "text": {"body": "I want to book a session"}},
					{"from": "+233201234567", "type": "image"}
				]
			}
		}]
	}]
}`

func metaSign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandlerVerifyWhatsAppEchoesChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(config.WhatsAppConfig{VerifyToken: "verify-me"}, &queueStub{}, &paystackServiceStub{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	c.Request = req

	handler.VerifyWhatsApp(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestWebhookHandlerVerifyWhatsAppRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(config.WhatsAppConfig{VerifyToken: "verify-me"}, &queueStub{}, &paystackServiceStub{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	c.Request = req

	handler.VerifyWhatsApp(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookHandlerReceiveWhatsAppEnqueuesTextMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	queue := &queueStub{}
	handler := NewWebhookHandler(config.WhatsAppConfig{}, queue, &paystackServiceStub{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewBufferString(metaPayload))
	c.Request = req

	handler.ReceiveWhatsApp(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"queued":1`)

	// The image message has no text body and is skipped.
	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	assert.Equal(t, JobTypeInboundMessage, job.Type)
	msg, ok := job.Payload.(dto.InboundMessage)
	require.True(t, ok)
	assert.Equal(t, "+233201234567", msg.From)
	assert.Equal(t, "+233550000000", msg.Recipient)
	assert.Equal(t, "I want to book a session", msg.Body)
}

func TestWebhookHandlerReceiveWhatsAppEnforcesSignatureWhenConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	queue := &queueStub{}
	handler := NewWebhookHandler(config.WhatsAppConfig{AppSecret: "app-secret"}, queue, &paystackServiceStub{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewBufferString(metaPayload))
	req.Header.Set("X-Hub-Signature-256", metaSign("not-the-secret", []byte(metaPayload)))
	c.Request = req

	handler.ReceiveWhatsApp(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, queue.jobs)
}

func TestWebhookHandlerReceiveWhatsAppAcceptsValidSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	queue := &queueStub{}
	handler := NewWebhookHandler(config.WhatsAppConfig{AppSecret: "app-secret"}, queue, &paystackServiceStub{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewBufferString(metaPayload))
	req.Header.Set("X-Hub-Signature-256", metaSign("app-secret", []byte(metaPayload)))
	c.Request = req

	handler.ReceiveWhatsApp(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, queue.jobs, 1)
}

func TestWebhookHandlerReceivePaystackDelegates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	payments := &paystackServiceStub{}
	handler := NewWebhookHandler(config.WhatsAppConfig{}, &queueStub{}, payments, nil, nil)

	body := `{"event":"charge.success","data":{"reference":"ref-1"}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewBufferString(body))
	req.Header.Set("X-Paystack-Signature", "sig-header")
	c.Request = req

	handler.ReceivePaystack(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, string(payments.body))
	assert.Equal(t, "sig-header", payments.signature)
}

func TestWebhookHandlerReceivePaystackRejectsBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	payments := &paystackServiceStub{err: appErrors.Clone(appErrors.ErrInvalidSignature, "")}
	handler := NewWebhookHandler(config.WhatsAppConfig{}, &queueStub{}, payments, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewBufferString(`{}`))
	c.Request = req

	handler.ReceivePaystack(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
