// Package llm wraps an OpenAI-compatible chat completion endpoint (OpenRouter by default).
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"tgbots/internal/collab"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"
)

// Completer produces a single answer for a system + user prompt
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client is a chat completion client; without an API key every call is unavailable
type Client struct {
	client    openai.Client
	model     string
	maxTokens int64
	enabled   bool
}

// NewClient creates a client. An empty apiKey produces a disabled client.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{model: model, maxTokens: 600, enabled: apiKey != ""}
	if c.enabled {
		c.client = openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(1),
		)
	}
	return c
}

// Enabled reports whether an API key was configured
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Complete asks the model and returns the trimmed answer
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", collab.ErrUnavailable
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return answer, nil
}
