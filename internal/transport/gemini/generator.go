// Package gemini adapts the Google Gemini API to the pipeline's Generator
// contract.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/raseed-cloud/raseed/internal/domain"
)

// Generator is a text generation provider backed by Gemini.
type Generator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

// NewGenerator creates a Gemini generation provider.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Generate sends one unary generation request and returns the concatenated
// text parts of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %v: %w", err, domain.ErrLLMProvider)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty generation response: %w", domain.ErrLLMProvider)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("generation response has no text parts: %w", domain.ErrLLMProvider)
	}
	return b.String(), nil
}

// HealthCheck verifies API availability with a minimal generation request.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.Generate(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini health check: %w", err)
	}
	return nil
}
