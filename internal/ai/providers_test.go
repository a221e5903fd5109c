package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// readyOllamaProvider returns a provider pointed at srv that skips the
// service-management initialization.
func readyOllamaProvider(srv *httptest.Server) *OllamaProvider {
	p := NewOllamaProvider(srv.URL, "llama3.2:3b", 5*time.Second, 0, zap.NewNop())
	p.initialized = true
	p.verifiedModel = "llama3.2:3b"
	return p
}

func TestOllamaGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2:3b", req.Model)
		assert.False(t, req.Stream)
		assert.NotEmpty(t, req.System)

		json.NewEncoder(w).Encode(map[string]any{"response": `  {"action":"chat"}  `})
	}))
	defer srv.Close()

	p := readyOllamaProvider(srv)
	out, err := p.Generate(context.Background(), "hello", SystemPrompt())
	require.NoError(t, err)
	assert.Equal(t, `{"action":"chat"}`, out)
}

func TestOllamaGenerateModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := readyOllamaProvider(srv)
	_, err := p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureModelNotFound, FailureOf(err))

	// A 404 marks the provider not ready so the next call re-verifies.
	p.mu.Lock()
	assert.False(t, p.initialized)
	p.mu.Unlock()
}

func TestOllamaGenerateErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "model requires more memory"})
	}))
	defer srv.Close()

	p := readyOllamaProvider(srv)
	_, err := p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureResponse, FailureOf(err))
	assert.Contains(t, err.Error(), "more memory")
}

func TestOllamaGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"response": "   "})
	}))
	defer srv.Close()

	p := readyOllamaProvider(srv)
	_, err := p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureResponse, FailureOf(err))
}

func TestOllamaGenerateRestartsOnRefusedConnection(t *testing.T) {
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"response": "recovered"})
	}))
	defer live.Close()

	dead := httptest.NewServer(http.HandlerFunc(nil))
	deadURL := dead.URL
	dead.Close()

	p := NewOllamaProvider(deadURL, "llama3.2:3b", 5*time.Second, 0, zap.NewNop())
	p.initialized = true
	p.verifiedModel = "llama3.2:3b"

	restarted := false
	p.restart = func(ctx context.Context) (bool, string) {
		restarted = true
		p.host = live.URL
		return true, "started"
	}

	out, err := p.Generate(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.True(t, restarted)
	assert.Equal(t, "recovered", out)
}

func TestOllamaGenerateRestartFails(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(nil))
	deadURL := dead.URL
	dead.Close()

	p := NewOllamaProvider(deadURL, "llama3.2:3b", 5*time.Second, 0, zap.NewNop())
	p.initialized = true
	p.verifiedModel = "llama3.2:3b"
	p.restart = func(ctx context.Context) (bool, string) {
		return false, "ollama executable not found"
	}

	_, err := p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureConnection, FailureOf(err))
	assert.Contains(t, err.Error(), "ollama executable not found")
}

func TestOllamaContextLengthOption(t *testing.T) {
	var got ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"response": "ok"})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b", 5*time.Second, 8192, zap.NewNop())
	p.initialized = true
	p.verifiedModel = "llama3.2:3b"

	_, err := p.Generate(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, float64(8192), got.Options["num_ctx"])
}

func TestCloudProvidersRequireCredentials(t *testing.T) {
	_, err := NewOpenAIProvider("", "gpt-4o-mini", "", time.Minute)
	assert.Equal(t, FailureMissingCredential, FailureOf(err))

	_, err = NewGroqProvider("", "llama-3.1-8b-instant", 0.1, 2048, time.Minute)
	assert.Equal(t, FailureMissingCredential, FailureOf(err))

	_, err = NewGeminiProvider("", "gemini-2.5-flash", 0.1, 2048, time.Minute)
	assert.Equal(t, FailureMissingCredential, FailureOf(err))
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"action":"chat"}`}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("test-key", "gpt-4o-mini", srv.URL, 5*time.Second)
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), "hello", SystemPrompt())
	require.NoError(t, err)
	assert.Equal(t, `{"action":"chat"}`, out)
}

func TestOpenAIGenerateRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("test-key", "gpt-4o-mini", srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureRateLimited, FailureOf(err))

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7*time.Second, pe.RetryAfter)
}

func TestOpenAIGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("test-key", "gpt-4o-mini", srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureResponse, FailureOf(err))
}

func TestGroqGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-8b-instant", req.Model)
		assert.Equal(t, 0.1, req.Temperature)
		assert.Equal(t, 2048, req.MaxTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewGroqProvider("test-key", "llama-3.1-8b-instant", 0.1, 2048, 5*time.Second)
	require.NoError(t, err)
	p.client.baseURL = srv.URL

	out, err := p.Generate(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req geminiGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		require.Len(t, req.Contents, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"action":`}, {"text": `"chat"}`}},
				}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("secret", "gemini-2.5-flash", 0.1, 2048, 5*time.Second)
	require.NoError(t, err)
	p.baseURL = srv.URL

	out, err := p.Generate(context.Background(), "hello", SystemPrompt())
	require.NoError(t, err)
	assert.Equal(t, `{"action":"chat"}`, out)
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "API key not valid"},
		})
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("bad", "gemini-2.5-flash", 0.1, 2048, 5*time.Second)
	require.NoError(t, err)
	p.baseURL = srv.URL

	_, err = p.Generate(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Equal(t, FailureResponse, FailureOf(err))
	assert.Contains(t, err.Error(), "API key not valid")
}
