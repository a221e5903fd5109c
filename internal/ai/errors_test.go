package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFailureOf(t *testing.T) {
	assert.Equal(t, FailureConnection, FailureOf(connectionError("ollama", "down", nil)))
	assert.Equal(t, FailureModelNotFound, FailureOf(modelNotFoundError("ollama", "llama3.2:3b")))
	assert.Equal(t, FailureMissingCredential, FailureOf(missingCredentialError("groq")))
	assert.Equal(t, FailureUnknown, FailureOf(errors.New("plain")))
}

func TestFailureOfWrappedError(t *testing.T) {
	err := fmt.Errorf("while generating: %w", rateLimitedError("groq", 0))
	assert.Equal(t, FailureRateLimited, FailureOf(err))
}

func TestProviderErrorMessage(t *testing.T) {
	err := modelNotFoundError("ollama", "llama3.2:3b")
	assert.Contains(t, err.Error(), "ollama")
	assert.Contains(t, err.Error(), "model_not_found")
	assert.Contains(t, err.Error(), "llama3.2:3b")
}

func TestRemediationHints(t *testing.T) {
	hint := Remediation(modelNotFoundError("ollama", "llama3.2:3b"))
	assert.Contains(t, hint, "ollama pull llama3.2:3b")

	hint = Remediation(connectionError("ollama", "refused", nil))
	assert.Contains(t, hint, "ollama serve")

	hint = Remediation(missingCredentialError("gemini"))
	assert.Contains(t, hint, ".env")

	hint = Remediation(rateLimitedError("groq", 30*time.Second))
	assert.Contains(t, hint, "30s")

	// Cloud connection errors have no local fix to suggest.
	hint = Remediation(connectionError("openai", "refused", nil))
	assert.NotContains(t, hint, "Fix:")
}

func TestRemediationPlainError(t *testing.T) {
	assert.Equal(t, "boom", Remediation(errors.New("boom")))
}
