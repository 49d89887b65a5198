package dto

// WhatsAppWebhook mirrors the Meta Cloud API event envelope, reduced to the
// fields the orchestrator consumes.
type WhatsAppWebhook struct {
	Object string          `json:"object"`
	Entry  []WhatsAppEntry `json:"entry"`
}

type WhatsAppEntry struct {
	ID      string           `json:"id"`
	Changes []WhatsAppChange `json:"changes"`
}

type WhatsAppChange struct {
	Field string        `json:"field"`
	Value WhatsAppValue `json:"value"`
}

type WhatsAppValue struct {
	Metadata WhatsAppMetadata  `json:"metadata"`
	Messages []WhatsAppMessage `json:"messages"`
}

type WhatsAppMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WhatsAppMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Button *struct {
		Text string `json:"text"`
	} `json:"button,omitempty"`
}

// Text body with the button-reply fallback the original scaffold used.
func (m WhatsAppMessage) BodyText() string {
	if m.Text != nil {
		return m.Text.Body
	}
	if m.Button != nil {
		return m.Button.Text
	}
	return ""
}

// InboundMessage is the normalised unit of work placed on the webhook queue.
type InboundMessage struct {
	From      string `json:"from"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// PaystackEvent is the subset of the Paystack webhook payload we act on.
type PaystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}
