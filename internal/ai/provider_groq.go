package ai

import (
	"context"
	"net/http"
	"time"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider uses Groq's OpenAI-compatible endpoint.
type GroqProvider struct {
	client chatCompletionClient
}

func NewGroqProvider(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) (*GroqProvider, error) {
	if apiKey == "" {
		return nil, missingCredentialError("groq")
	}
	return &GroqProvider{
		client: chatCompletionClient{
			provider:    "groq",
			apiKey:      apiKey,
			baseURL:     groqBaseURL,
			model:       model,
			temperature: temperature,
			maxTokens:   maxTokens,
			httpClient:  &http.Client{Timeout: timeout},
		},
	}, nil
}

func (p *GroqProvider) Descriptor() Descriptor { return Descriptor{Name: "groq"} }
func (p *GroqProvider) Model() string          { return p.client.model }

func (p *GroqProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.client.generate(ctx, prompt, systemPrompt)
}
