package whatsapp

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const sendchampAPIURL = "https://api.sendchamp.com/api/v1"

// SendchampProvider sends messages through the Sendchamp API.
type SendchampProvider struct {
	client  *resty.Client
	baseURL string
	key     string
	sender  string
}

type sendchampPayload struct {
	To         []string `json:"to"`
	Message    string   `json:"message"`
	SenderName string   `json:"sender_name"`
	Route      string   `json:"route"`
}

// SendText posts a message via the Sendchamp send endpoint.
func (p *SendchampProvider) SendText(ctx context.Context, to, text string) error {
	if p.key == "" || p.sender == "" {
		return fmt.Errorf("missing sendchamp config (SENDCHAMP_API_KEY, SENDCHAMP_SENDER)")
	}
	base := p.baseURL
	if base == "" {
		base = sendchampAPIURL
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.key).
		SetHeader("Content-Type", "application/json").
		SetBody(sendchampPayload{
			To:         []string{to},
			Message:    text,
			SenderName: p.sender,
			Route:      "dnd",
		}).
		Post(base + "/message/send")
	if err != nil {
		return fmt.Errorf("whatsapp sendchamp send: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("whatsapp sendchamp send error %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
