package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/models"
	appErrors "github.com/akotolabs/waflow/pkg/errors"
)

const maxOfferedSlots = 6

var isoDatePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

type tenantResolver interface {
	FindByWhatsAppNumber(ctx context.Context, number string) (*models.Tenant, error)
}

type messageAuditStore interface {
	Create(ctx context.Context, log *models.MessageLog) error
	List(ctx context.Context, filter models.MessageLogFilter) ([]models.MessageLog, error)
}

type intentClassifier interface {
	Classify(ctx context.Context, text string) Intent
}

type faqSearcher interface {
	Search(ctx context.Context, tenantID, query string) (*models.FAQMatch, error)
}

type slotComputer interface {
	ComputeSlots(ctx context.Context, tenantID, date, tz string) ([]models.Slot, error)
}

type messageSender interface {
	SendText(ctx context.Context, to, text string) error
}

type inboundMetrics interface {
	ObserveInboundMessage(intent string)
}

// ConversationService orchestrates one inbound WhatsApp message end to end:
// resolve the tenant, audit, classify, dispatch to a tool, reply, audit the
// reply.
type ConversationService struct {
	tenants  tenantResolver
	messages messageAuditStore
	intents  intentClassifier
	faqs     faqSearcher
	slots    slotComputer
	sender   messageSender
	metrics  inboundMetrics
	logger   *zap.Logger
}

// NewConversationService builds a ConversationService.
func NewConversationService(tenants tenantResolver, messages messageAuditStore, intents intentClassifier, faqs faqSearcher, slots slotComputer, sender messageSender, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		tenants:  tenants,
		messages: messages,
		intents:  intents,
		faqs:     faqs,
		slots:    slots,
		sender:   sender,
		logger:   logger,
	}
}

// SetMetrics attaches an optional metrics observer.
func (s *ConversationService) SetMetrics(m inboundMetrics) {
	s.metrics = m
}

// HandleInbound processes one normalised inbound message. Messages for
// unknown recipients are acknowledged and dropped so the provider does not
// retry them forever.
func (s *ConversationService) HandleInbound(ctx context.Context, msg dto.InboundMessage) error {
	if msg.From == "" || msg.Body == "" {
		return nil
	}

	tenant, err := s.tenants.FindByWhatsAppNumber(ctx, msg.Recipient)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("inbound message for unknown recipient", zap.String("recipient", msg.Recipient))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "tenant lookup failed")
	}

	s.audit(ctx, &models.MessageLog{
		TenantID:  tenant.ID,
		UserPhone: msg.From,
		Direction: models.DirectionIn,
		Body:      msg.Body,
	})

	intent := s.intents.Classify(ctx, msg.Body)
	if s.metrics != nil {
		s.metrics.ObserveInboundMessage(intent.Type)
	}
	out := s.dispatch(ctx, tenant, msg.Body, intent)

	if err := s.sender.SendText(ctx, msg.From, out.reply); err != nil {
		s.logger.Error("failed to send reply",
			zap.String("tenant_id", tenant.ID), zap.String("to", msg.From), zap.Error(err))
	}

	s.audit(ctx, &models.MessageLog{
		TenantID:   tenant.ID,
		UserPhone:  msg.From,
		Direction:  models.DirectionOut,
		Body:       out.auditBody,
		Intent:     &out.intent,
		Confidence: &out.confidence,
		ToolCalled: out.tool,
	})
	return nil
}

// ListLogs returns audit entries for the admin API.
func (s *ConversationService) ListLogs(ctx context.Context, filter models.MessageLogFilter) ([]models.MessageLog, error) {
	if filter.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tenant_id is required")
	}
	logs, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list message logs")
	}
	return logs, nil
}

// outcome is what a dispatched tool hands back: the reply for the user
// and what the audit log should record about it. auditBody usually
// mirrors the reply; the handoff path masks it as "[handoff]".
type outcome struct {
	reply      string
	auditBody  string
	intent     string
	confidence float64
	tool       *string
}

func (s *ConversationService) dispatch(ctx context.Context, tenant *models.Tenant, body string, intent Intent) outcome {
	switch intent.Type {
	case models.IntentFAQ:
		return s.answerFAQ(ctx, tenant, body)
	case models.IntentBookingStart:
		return s.offerSlots(ctx, tenant, body, intent.Confidence)
	case models.IntentPaymentRequest:
		reply := "To lock in your booking we require a deposit. Reply with your booking details and we'll send you a secure payment link."
		return outcome{reply: reply, auditBody: reply, intent: intent.Type, confidence: intent.Confidence}
	default:
		reply := fmt.Sprintf("Hi! Welcome to %s. You can ask about our services or say 'book' to make a reservation.", tenant.Name)
		return outcome{reply: reply, auditBody: reply, intent: models.IntentSmalltalk, confidence: intent.Confidence}
	}
}

// answerFAQ audits the retrieval confidence on a hit, not the
// classifier's. A miss is a human handoff: body "[handoff]", confidence 0.
func (s *ConversationService) answerFAQ(ctx context.Context, tenant *models.Tenant, body string) outcome {
	tool := "faq_search"
	match, err := s.faqs.Search(ctx, tenant.ID, body)
	if err != nil {
		s.logger.Error("faq search failed", zap.String("tenant_id", tenant.ID), zap.Error(err))
		match = nil
	}
	if match == nil {
		return outcome{
			reply:     "I couldn't find an answer to that. Let me connect you with a team member.",
			auditBody: "[handoff]",
			intent:    models.IntentHandoff,
			tool:      &tool,
		}
	}
	return outcome{
		reply:      match.Answer,
		auditBody:  match.Answer,
		intent:     models.IntentFAQ,
		confidence: match.Confidence,
		tool:       &tool,
	}
}

func (s *ConversationService) offerSlots(ctx context.Context, tenant *models.Tenant, body string, confidence float64) outcome {
	tool := "compute_slots"
	booking := func(reply string, tool *string) outcome {
		return outcome{reply: reply, auditBody: reply, intent: models.IntentBookingStart, confidence: confidence, tool: tool}
	}

	date, ok := dateHint(body, tenant.TimeZone)
	if !ok {
		return booking("Great, let's get you booked! Which date would you like? (e.g. 2026-09-15, 'today' or 'tomorrow')", nil)
	}

	slots, err := s.slots.ComputeSlots(ctx, tenant.ID, date, "")
	if err != nil {
		s.logger.Error("slot computation failed",
			zap.String("tenant_id", tenant.ID), zap.String("date", date), zap.Error(err))
		return booking("Sorry, I couldn't check availability just now. Please try again in a moment.", &tool)
	}
	if len(slots) == 0 {
		return booking(fmt.Sprintf("We're fully booked (or closed) on %s. Would you like to try another date?", date), &tool)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available times on %s:\n", date)
	for i, slot := range slots {
		if i == maxOfferedSlots {
			b.WriteString("...and more. Reply with a time to book.")
			break
		}
		fmt.Fprintf(&b, "%d) %s - %s\n", i+1, slot.Start.Format("15:04"), slot.End.Format("15:04"))
	}
	return booking(strings.TrimRight(b.String(), "\n"), &tool)
}

// dateHint extracts a booking date from free text: an ISO date wins,
// otherwise "today"/"tomorrow" resolve in the tenant's time zone.
func dateHint(body, tz string) (string, bool) {
	if m := isoDatePattern.FindString(body); m != "" {
		return m, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	lower := strings.ToLower(body)
	now := time.Now().In(loc)
	switch {
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1).Format(dateLayout), true
	case strings.Contains(lower, "today"):
		return now.Format(dateLayout), true
	}
	return "", false
}

func (s *ConversationService) audit(ctx context.Context, log *models.MessageLog) {
	if err := s.messages.Create(ctx, log); err != nil {
		s.logger.Error("failed to write message audit entry",
			zap.String("tenant_id", log.TenantID), zap.String("direction", string(log.Direction)), zap.Error(err))
	}
}
