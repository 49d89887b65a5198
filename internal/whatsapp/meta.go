package whatsapp

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const metaGraphURL = "https://graph.facebook.com/v20.0"

// MetaProvider sends messages through the WhatsApp Cloud API.
type MetaProvider struct {
	client  *resty.Client
	baseURL string
	token   string
	phoneID string
}

type metaTextPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             metaText `json:"text"`
}

type metaText struct {
	Body string `json:"body"`
}

// SendText posts a plain text message to the Cloud API.
func (p *MetaProvider) SendText(ctx context.Context, to, text string) error {
	if p.token == "" || p.phoneID == "" {
		return fmt.Errorf("missing whatsapp meta config (WHATSAPP_TOKEN, WHATSAPP_PHONE_ID)")
	}
	base := p.baseURL
	if base == "" {
		base = metaGraphURL
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.token).
		SetHeader("Content-Type", "application/json").
		SetBody(metaTextPayload{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "text",
			Text:             metaText{Body: text},
		}).
		Post(fmt.Sprintf("%s/%s/messages", base, p.phoneID))
	if err != nil {
		return fmt.Errorf("whatsapp meta send: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("whatsapp meta send error %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
