package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pcpilot/internal/ollama"
)

// OllamaProvider talks to a local Ollama server. It starts the service and
// verifies the model before first use, and restarts the service once when a
// request hits a refused connection.
type OllamaProvider struct {
	host          string
	model         string
	timeout       time.Duration
	contextLength int
	helper        *ollama.Helper
	client        *http.Client
	log           *zap.Logger

	mu            sync.Mutex
	initialized   bool
	verifiedModel string
	lastError     string

	// restart is swapped in tests to avoid spawning processes.
	restart func(ctx context.Context) (bool, string)
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// NewOllamaProvider creates the provider. No network traffic happens until
// Initialize or the first Generate.
func NewOllamaProvider(host, model string, timeout time.Duration, contextLength int, log *zap.Logger) *OllamaProvider {
	host = strings.TrimRight(host, "/")
	helper := ollama.NewHelper(host, log)
	p := &OllamaProvider{
		host:          host,
		model:         model,
		timeout:       timeout,
		contextLength: contextLength,
		helper:        helper,
		client:        &http.Client{Timeout: timeout},
		log:           log,
	}
	p.restart = helper.StartService
	return p
}

func (p *OllamaProvider) Descriptor() Descriptor { return Descriptor{Name: "ollama"} }

func (p *OllamaProvider) Model() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifiedModel != "" {
		return p.verifiedModel
	}
	return p.model
}

// Initialize brings the local service up and verifies the model. Idempotent.
func (p *OllamaProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	if p.initialized {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	ok, msg, model := p.helper.EnsureReady(ctx, p.model)
	if !ok {
		p.setFailed(msg)
		return connectionError("ollama", msg, nil)
	}

	if ok, testMsg := p.helper.TestGeneration(ctx, model); !ok {
		p.setFailed(testMsg)
		return responseError("ollama", testMsg, nil)
	}

	p.mu.Lock()
	p.initialized = true
	p.verifiedModel = model
	p.lastError = ""
	p.mu.Unlock()

	p.log.Info("ollama provider initialized", zap.String("model", model))
	return nil
}

func (p *OllamaProvider) setFailed(msg string) {
	p.mu.Lock()
	p.initialized = false
	p.lastError = msg
	p.mu.Unlock()
}

// Available reports whether the service still answers.
func (p *OllamaProvider) Available(ctx context.Context) bool {
	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()
	return initialized && p.helper.IsRunning(ctx)
}

// HealthCheck initializes if needed and runs a tiny generation.
func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	if err := p.Initialize(ctx); err != nil {
		return err
	}
	if !p.helper.IsRunning(ctx) {
		return connectionError("ollama", "service is not running", nil)
	}
	if ok, msg := p.helper.TestGeneration(ctx, p.Model()); !ok {
		return responseError("ollama", msg, nil)
	}
	return nil
}

// Status exposes service and model state for diagnostics.
func (p *OllamaProvider) Status(ctx context.Context) map[string]any {
	p.mu.Lock()
	initialized := p.initialized
	lastError := p.lastError
	p.mu.Unlock()

	models := make([]string, 0)
	for _, m := range p.helper.InstalledModels(ctx) {
		models = append(models, m.Name)
	}

	return map[string]any{
		"provider":         "ollama",
		"is_ready":         initialized,
		"is_running":       p.helper.IsRunning(ctx),
		"is_installed":     p.helper.IsInstalled(),
		"model":            p.Model(),
		"host":             p.host,
		"error":            lastError,
		"installed_models": models,
	}
}

// Generate sends a prompt to /api/generate.
func (p *OllamaProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := p.Initialize(ctx); err != nil {
		return "", err
	}

	model := p.Model()
	payload := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	}
	if p.contextLength > 0 {
		payload.Options = map[string]any{"num_ctx": p.contextLength}
	}

	resp, err := p.post(ctx, payload)
	if err != nil {
		if !isConnRefused(err) {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", responseError("ollama", fmt.Sprintf("request timed out after %s", p.timeout), err)
			}
			return "", connectionError("ollama", "request failed", err)
		}

		// The service died under us. Restart once and retry.
		p.setFailed("Cannot connect to Ollama. Is it running?")
		p.log.Warn("connection refused, restarting ollama")
		ok, msg := p.restart(ctx)
		if !ok {
			return "", connectionError("ollama", fmt.Sprintf("cannot connect to Ollama at %s. %s", p.host, msg), err)
		}
		resp, err = p.post(ctx, payload)
		if err != nil {
			return "", connectionError("ollama", "retry after restart failed", err)
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", responseError("ollama", "failed to read response", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		p.setFailed(fmt.Sprintf("model %s not found", model))
		return "", modelNotFoundError("ollama", model)
	}
	if resp.StatusCode >= 400 {
		return "", responseError("ollama", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 500)), nil)
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", responseError("ollama", "invalid JSON in response", err)
	}
	if out.Error != "" {
		return "", responseError("ollama", out.Error, nil)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", responseError("ollama", "empty response", nil)
	}

	return strings.TrimSpace(out.Response), nil
}

func (p *OllamaProvider) post(ctx context.Context, payload ollamaGenerateRequest) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.client.Do(req)
}

func isConnRefused(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "No connection could be made")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
