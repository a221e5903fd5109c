package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chatCompletionClient is the shared core for every backend speaking the
// OpenAI chat-completions protocol.
type chatCompletionClient struct {
	provider    string
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

func (c *chatCompletionClient) generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", responseError(c.provider, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", connectionError(c.provider, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", responseError(c.provider, "request timed out", err)
		}
		return "", connectionError(c.provider, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", responseError(c.provider, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", rateLimitedError(c.provider, retryAfter(resp))
	case resp.StatusCode == http.StatusNotFound:
		return "", modelNotFoundError(c.provider, c.model)
	case resp.StatusCode != http.StatusOK:
		return "", responseError(c.provider, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 500)), nil)
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", responseError(c.provider, "invalid JSON in response", err)
	}
	if out.Error != nil {
		return "", responseError(c.provider, out.Error.Message, nil)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", responseError(c.provider, "empty response", nil)
	}

	return out.Choices[0].Message.Content, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// OpenAIProvider speaks to the OpenAI API or any compatible endpoint.
type OpenAIProvider struct {
	client chatCompletionClient
}

// NewOpenAIProvider fails fast when no key is configured so the engine can
// skip this provider during fallback.
func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, missingCredentialError("openai")
	}
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return &OpenAIProvider{
		client: chatCompletionClient{
			provider:   "openai",
			apiKey:     apiKey,
			baseURL:    strings.TrimRight(baseURL, "/"),
			model:      model,
			httpClient: &http.Client{Timeout: timeout},
		},
	}, nil
}

func (p *OpenAIProvider) Descriptor() Descriptor { return Descriptor{Name: "openai"} }
func (p *OpenAIProvider) Model() string          { return p.client.model }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.client.generate(ctx, prompt, systemPrompt)
}
