package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akotolabs/waflow/pkg/config"
)

// Client is a thin wrapper over the OpenAI REST API covering the two calls
// this service makes: chat completions and embeddings.
type Client struct {
	http           *resty.Client
	apiKey         string
	chatModel      string
	embeddingModel string
}

// NewClient builds a client from config. Enabled() is false without a key.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		http:           resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(30 * time.Second),
		apiKey:         cfg.APIKey,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs a zero-temperature chat completion and returns the first
// choice's content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("openai api key not configured")
	}
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model: c.chatModel,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
		}).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("openai chat completion error %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text. Returns nil
// without error when no API key is configured.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var out embeddingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(embeddingRequest{Model: c.embeddingModel, Input: text}).
		SetResult(&out).
		Post("/v1/embeddings")
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("openai embedding error %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("openai embedding returned no data")
	}
	return out.Data[0].Embedding, nil
}
