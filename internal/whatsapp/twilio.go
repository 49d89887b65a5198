package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const twilioAPIURL = "https://api.twilio.com/2010-04-01"

// TwilioProvider sends WhatsApp messages through Twilio's messaging API.
type TwilioProvider struct {
	client  *resty.Client
	baseURL string
	sid     string
	token   string
	from    string
}

// SendText posts a form-encoded message request. Twilio expects the
// whatsapp: address prefix on the To field.
func (p *TwilioProvider) SendText(ctx context.Context, to, text string) error {
	if p.sid == "" || p.token == "" || p.from == "" {
		return fmt.Errorf("missing twilio config (TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_WHATSAPP_FROM)")
	}
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}
	base := p.baseURL
	if base == "" {
		base = twilioAPIURL
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.sid, p.token).
		SetFormData(map[string]string{
			"To":   to,
			"From": p.from,
			"Body": text,
		}).
		Post(fmt.Sprintf("%s/Accounts/%s/Messages.json", base, p.sid))
	if err != nil {
		return fmt.Errorf("whatsapp twilio send: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("whatsapp twilio send error %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
