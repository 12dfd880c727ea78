// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/paper-collector/pkg/types"
)

// OpenAIBackend calls an OpenAI-compatible chat completion API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend validates the configuration and returns a backend.
func NewOpenAIBackend(cfg types.SummarizerConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai backend requires an API key")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIBackend{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

// Name returns the backend identifier.
func (b *OpenAIBackend) Name() string { return "openai" }

// Generate sends one prompt as a single-turn chat and returns the reply.
func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response contains no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
