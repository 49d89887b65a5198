package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akotolabs/waflow/pkg/config"
)

// Client wraps the Paystack transaction API and webhook verification.
type Client struct {
	http      *resty.Client
	secretKey string
}

// NewClient builds a Paystack client from config.
func NewClient(cfg config.PaystackConfig) *Client {
	return &Client{
		http:      resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(15 * time.Second),
		secretKey: cfg.SecretKey,
	}
}

// InitResult is the hosted checkout created by InitializeTransaction.
type InitResult struct {
	URL       string
	Reference string
}

type initRequest struct {
	Email    string         `json:"email"`
	Amount   int64          `json:"amount"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type initResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction creates a hosted payment page. Amount is in base
// subunits (kobo/pesewas) per the account's currency settings.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amount int64, metadata map[string]any) (*InitResult, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("missing PAYSTACK_SECRET_KEY")
	}
	var out initResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.secretKey).
		SetHeader("Content-Type", "application/json").
		SetBody(initRequest{Email: email, Amount: amount, Metadata: metadata}).
		SetResult(&out).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	if resp.StatusCode() >= 300 || !out.Status || out.Data.AuthorizationURL == "" || out.Data.Reference == "" {
		return nil, fmt.Errorf("paystack initialize failed %d: %s", resp.StatusCode(), resp.String())
	}
	return &InitResult{URL: out.Data.AuthorizationURL, Reference: out.Data.Reference}, nil
}

// VerifySignature checks the X-Paystack-Signature header against an
// HMAC-SHA512 of the raw request body. Paystack signs the exact bytes it
// sent, so callers must pass the unmodified body.
func (c *Client) VerifySignature(rawBody []byte, headerSig string) bool {
	if c.secretKey == "" || headerSig == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(rawBody)
	digest := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(digest), []byte(headerSig))
}
