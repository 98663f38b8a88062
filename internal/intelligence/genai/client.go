// Package genai wraps the generative-model API used for seed generation and
// relevance classification, plus the response-cleanup helpers LLM output
// tends to need.
package genai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Completer issues one prompt and returns the model's text output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is the Anthropic-backed Completer.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
}

// NewClient builds a Client for the given model.
func NewClient(apiKey, model string, maxTokens int64) *Client {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Client{
		api:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends a single-user-message request and concatenates the text
// blocks of the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

// ---
// Response cleanup
// ---

var (
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	objectRegex    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex     = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ExtractJSON pulls the JSON payload out of a model response that may wrap it
// in code fences or surrounding prose. Returns the trimmed input when no
// object or array is found; callers discover real parse failures at
// unmarshal time.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}
	if m := objectRegex.FindString(text); m != "" {
		return m
	}
	if m := arrayRegex.FindString(text); m != "" {
		return m
	}
	return text
}
