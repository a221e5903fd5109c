package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Gemini generateContent REST endpoint.
type GeminiProvider struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeminiProvider(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, missingCredentialError("gemini")
	}
	return &GeminiProvider{
		apiKey:      apiKey,
		baseURL:     geminiBaseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *GeminiProvider) Descriptor() Descriptor { return Descriptor{Name: "gemini"} }
func (p *GeminiProvider) Model() string          { return p.model }

func (p *GeminiProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	reqBody.GenerationConfig.Temperature = p.temperature
	reqBody.GenerationConfig.MaxOutputTokens = p.maxTokens

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", responseError("gemini", "failed to marshal request", err)
	}

	// The key travels in the query string, never in logs.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL, p.model, url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", connectionError("gemini", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", responseError("gemini", "request timed out", err)
		}
		return "", connectionError("gemini", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", responseError("gemini", "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", rateLimitedError("gemini", retryAfter(resp))
	case resp.StatusCode == http.StatusNotFound:
		return "", modelNotFoundError("gemini", p.model)
	case resp.StatusCode != http.StatusOK:
		return "", responseError("gemini", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 500)), nil)
	}

	var out geminiGenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", responseError("gemini", "invalid JSON in response", err)
	}
	if out.Error != nil {
		return "", responseError("gemini", out.Error.Message, nil)
	}

	var text strings.Builder
	if len(out.Candidates) > 0 {
		for _, part := range out.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", responseError("gemini", "empty response", nil)
	}

	return text.String(), nil
}
