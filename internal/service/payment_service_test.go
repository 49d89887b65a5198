package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	"github.com/akotolabs/waflow/internal/paystack"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

type gatewayStub struct {
	initResult *paystack.InitResult
	initErr    error
	validSig   bool
}

func (s *gatewayStub) InitializeTransaction(ctx context.Context, email string, amount int64, metadata map[string]any) (*paystack.InitResult, error) {
	return s.initResult, s.initErr
}

func (s *gatewayStub) VerifySignature(rawBody []byte, headerSig string) bool {
	return s.validSig
}

type paymentBookingStub struct {
	attachedID  string
	attachedRef string
	confirmed   *models.Booking
	confirmErr  error
}

func (s *paymentBookingStub) AttachPaystackRef(ctx context.Context, bookingID, ref string) error {
	s.attachedID = bookingID
	s.attachedRef = ref
	return nil
}

func (s *paymentBookingStub) ConfirmByPaystackRef(ctx context.Context, ref string) (*models.Booking, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return s.confirmed, nil
}

func TestInitiateAttachesRefToBooking(t *testing.T) {
	gateway := &gatewayStub{initResult: &paystack.InitResult{URL: "https://pay", Reference: "ref-1"}}
	bookings := &paymentBookingStub{}
	svc := NewPaymentService(gateway, bookings, &invalidatorStub{}, nil, nil)

	res, err := svc.Initiate(context.Background(), dto.InitiatePaymentRequest{
		Email:    "user@example.com",
		Amount:   5000,
		Metadata: map[string]any{"booking_id": "booking-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay", res.URL)
	assert.Equal(t, "booking-1", bookings.attachedID)
	assert.Equal(t, "ref-1", bookings.attachedRef)
}

func TestInitiateValidatesPayload(t *testing.T) {
	svc := NewPaymentService(&gatewayStub{}, &paymentBookingStub{}, nil, nil, nil)

	_, err := svc.Initiate(context.Background(), dto.InitiatePaymentRequest{Email: "not-an-email", Amount: 100})
	require.Error(t, err)

	_, err = svc.Initiate(context.Background(), dto.InitiatePaymentRequest{Email: "a@b.com", Amount: 0})
	require.Error(t, err)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc := NewPaymentService(&gatewayStub{validSig: false}, &paymentBookingStub{}, nil, nil, nil)

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidSignature.Code, appErrors.FromError(err).Code)
}

func TestHandleWebhookConfirmsChargeSuccess(t *testing.T) {
	bookings := &paymentBookingStub{confirmed: &models.Booking{ID: "booking-1", TenantID: testTenantID}}
	inv := &invalidatorStub{}
	svc := NewPaymentService(&gatewayStub{validSig: true}, bookings, inv, nil, nil)

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","status":"success","amount":5000}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
	assert.Equal(t, []string{testTenantID}, inv.tenants)
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	bookings := &paymentBookingStub{confirmErr: sql.ErrNoRows}
	svc := NewPaymentService(&gatewayStub{validSig: true}, bookings, nil, nil, nil)

	body := []byte(`{"event":"transfer.success","data":{"reference":"ref-1"}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
}

func TestHandleWebhookToleratesUnknownReference(t *testing.T) {
	bookings := &paymentBookingStub{confirmErr: sql.ErrNoRows}
	svc := NewPaymentService(&gatewayStub{validSig: true}, bookings, nil, nil, nil)

	body := []byte(`{"event":"charge.success","data":{"reference":"ghost"}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
}
