package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akotolabs/waflow/pkg/config"
)

// Provider delivers outbound WhatsApp messages. The concrete provider is
// chosen once from config at wiring time; nothing holds a process-global
// mutable provider.
type Provider interface {
	SendText(ctx context.Context, to, text string) error
}

// New builds the configured provider.
func New(cfg config.WhatsAppConfig) (Provider, error) {
	client := resty.New().SetTimeout(15 * time.Second)
	switch cfg.Provider {
	case "meta", "":
		return &MetaProvider{client: client, token: cfg.MetaToken, phoneID: cfg.MetaPhoneID}, nil
	case "twilio":
		return &TwilioProvider{client: client, sid: cfg.TwilioSID, token: cfg.TwilioToken, from: cfg.TwilioFrom}, nil
	case "sendchamp":
		return &SendchampProvider{client: client, key: cfg.SendchampKey, sender: cfg.SendchampSender}, nil
	default:
		return nil, fmt.Errorf("unknown whatsapp provider %q", cfg.Provider)
	}
}

// RenderInteractive flattens an interactive payload to text. Native
// interactive messages per provider can replace this later.
func RenderInteractive(payload interface{}) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "[interactive]"
	}
	return "[interactive]\n" + string(raw)
}
