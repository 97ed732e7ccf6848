package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIProvider talks to Gemini through langchaingo.
type GoogleAIProvider struct {
	llm llms.Model
}

func NewGoogleAIProvider(ctx context.Context, apiKey, model string) (*GoogleAIProvider, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}
	return &GoogleAIProvider{llm: llm}, nil
}

func (p *GoogleAIProvider) Name() string { return "googleai" }

func (p *GoogleAIProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt,
		llms.WithTemperature(opts.Temperature),
		llms.WithMaxTokens(opts.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("googleai generate: %w", err)
	}
	return out, nil
}
