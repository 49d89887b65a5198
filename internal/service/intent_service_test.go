package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akotolabs/waflow/internal/models"
)

type completerStub struct {
	enabled bool
	reply   string
	err     error
	called  bool
}

func (s *completerStub) Enabled() bool { return s.enabled }

func (s *completerStub) Complete(ctx context.Context, system, user string) (string, error) {
	s.called = true
	return s.reply, s.err
}

func TestClassifyRules(t *testing.T) {
	svc := NewIntentService(&completerStub{}, nil)

	cases := map[string]string{
		"I want to book a table":          models.IntentBookingStart,
		"Do you take appointments?":       models.IntentBookingStart,
		"what are your prices":            models.IntentFAQ,
		"What are your opening hours?":    models.IntentFAQ,
		"where is your location":          models.IntentFAQ,
		"can I pay a deposit now":         models.IntentPaymentRequest,
		"hello there":                     models.IntentSmalltalk,
		"":                                models.IntentSmalltalk,
	}
	for text, want := range cases {
		got := svc.Classify(context.Background(), text)
		assert.Equal(t, want, got.Type, "text: %q", text)
	}
}

func TestClassifyUsesLLMWhenEnabled(t *testing.T) {
	ai := &completerStub{enabled: true, reply: `Here you go: {"type":"PAYMENT_REQUEST"}`}
	svc := NewIntentService(ai, nil)

	got := svc.Classify(context.Background(), "random text")
	assert.True(t, ai.called)
	assert.Equal(t, models.IntentPaymentRequest, got.Type)
}

func TestClassifyFallsBackOnLLMFailure(t *testing.T) {
	ai := &completerStub{enabled: true, err: errors.New("boom")}
	svc := NewIntentService(ai, nil)

	got := svc.Classify(context.Background(), "book me in please")
	assert.Equal(t, models.IntentBookingStart, got.Type)
}

func TestClassifyFallsBackOnGarbageLLMOutput(t *testing.T) {
	ai := &completerStub{enabled: true, reply: `{"type":"NOT_A_THING"}`}
	svc := NewIntentService(ai, nil)

	got := svc.Classify(context.Background(), "how much does training cost")
	assert.Equal(t, models.IntentFAQ, got.Type)
}
