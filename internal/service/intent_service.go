package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/models"
)

type chatCompleter interface {
	Enabled() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Intent is the classification outcome for one inbound message.
type Intent struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

var (
	bookingPattern = regexp.MustCompile(`(book|reservation|appointment)`)
	faqPattern     = regexp.MustCompile(`(price|cost|hours|location|menu|services|training)`)
	paymentPattern = regexp.MustCompile(`(pay|payment|deposit|checkout)`)
)

const classifySystemPrompt = `Classify the user's intent into one of: FAQ, BOOKING_START, PAYMENT_REQUEST, SMALLTALK. Return ONLY a JSON object with "type".`

// IntentService classifies inbound message intent with a cheap LLM call and
// a deterministic rule fallback.
type IntentService struct {
	ai     chatCompleter
	logger *zap.Logger
}

// NewIntentService builds an IntentService. ai may be disabled.
func NewIntentService(ai chatCompleter, logger *zap.Logger) *IntentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentService{ai: ai, logger: logger}
}

// Classify returns the intent for a message. LLM failures fall back to
// rules; classification never returns an error.
func (s *IntentService) Classify(ctx context.Context, text string) Intent {
	if s.ai != nil && s.ai.Enabled() {
		if intent, ok := s.classifyLLM(ctx, text); ok {
			return intent
		}
	}
	return classifyRules(text)
}

func (s *IntentService) classifyLLM(ctx context.Context, text string) (Intent, bool) {
	content, err := s.ai.Complete(ctx, classifySystemPrompt, `User message: """`+text+`"""`)
	if err != nil {
		s.logger.Warn("intent classification call failed, using rules", zap.Error(err))
		return Intent{}, false
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Intent{}, false
	}

	var parsed struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil || parsed.Type == "" {
		return Intent{}, false
	}

	switch parsed.Type {
	case models.IntentFAQ, models.IntentBookingStart, models.IntentPaymentRequest, models.IntentSmalltalk:
		return Intent{Type: parsed.Type, Confidence: 0.9}, true
	}
	return Intent{}, false
}

func classifyRules(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case bookingPattern.MatchString(t):
		return Intent{Type: models.IntentBookingStart, Confidence: 0.9}
	case faqPattern.MatchString(t):
		return Intent{Type: models.IntentFAQ, Confidence: 0.9}
	case paymentPattern.MatchString(t):
		return Intent{Type: models.IntentPaymentRequest, Confidence: 0.9}
	default:
		return Intent{Type: models.IntentSmalltalk, Confidence: 0.4}
	}
}
