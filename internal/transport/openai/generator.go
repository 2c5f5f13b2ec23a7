// Package openai adapts an OpenAI-compatible chat completion API to the
// pipeline's Generator contract.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain"
)

// Generator is a text generation provider using the OpenAI-compatible API.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Generate sends one unary chat completion request and returns the reply
// text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrLLMProvider)
	}
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrLLMProvider for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrLLMProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
