package ai

import (
	"context"
	"fmt"

	"github.com/studymate/server/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// llmGenerator calls an OpenAI-compatible chat completion endpoint through
// langchaingo.
type llmGenerator struct {
	llm llms.Model
}

// NewGenerator builds the production Generator from config. Any
// OpenAI-compatible endpoint works (Groq by default). Without an API key the
// returned Generator fails every call with ErrUpstream.
func NewGenerator(cfg config.AIConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return disabledGenerator{}, nil
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return &llmGenerator{llm: llm}, nil
}

func (g *llmGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", Upstream(err)
	}
	return out, nil
}
