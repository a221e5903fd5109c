package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Failure classifies provider errors so callers can react without string
// matching.
type Failure int

const (
	FailureUnknown Failure = iota
	// FailureMissingCredential means the provider cannot be constructed
	// because no API key was configured.
	FailureMissingCredential
	// FailureConnection means the backend could not be reached.
	FailureConnection
	// FailureModelNotFound means the backend is up but the requested model
	// is not served.
	FailureModelNotFound
	// FailureResponse means the backend answered but the answer is unusable.
	FailureResponse
	// FailureRateLimited means the backend rejected the request with a
	// rate-limit status.
	FailureRateLimited
)

func (f Failure) String() string {
	switch f {
	case FailureMissingCredential:
		return "missing_credential"
	case FailureConnection:
		return "connection"
	case FailureModelNotFound:
		return "model_not_found"
	case FailureResponse:
		return "response"
	case FailureRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// ProviderError is the error type every provider adapter returns. It carries
// enough context to render an actionable message to the user.
type ProviderError struct {
	Provider   string
	Failure    Failure
	Model      string
	RetryAfter time.Duration
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Provider, e.Failure)
	if e.Model != "" {
		fmt.Fprintf(&b, " (model %s)", e.Model)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

func missingCredentialError(provider string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Failure:  FailureMissingCredential,
		Message:  "no API key configured",
	}
}

func connectionError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Failure:  FailureConnection,
		Message:  message,
		Err:      err,
	}
}

func modelNotFoundError(provider, model string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Failure:  FailureModelNotFound,
		Model:    model,
	}
}

func responseError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Failure:  FailureResponse,
		Message:  message,
		Err:      err,
	}
}

func rateLimitedError(provider string, retryAfter time.Duration) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Failure:    FailureRateLimited,
		RetryAfter: retryAfter,
		Message:    "rate limit exceeded",
	}
}

// FailureOf extracts the failure kind from an error chain. Errors that do not
// wrap a ProviderError report FailureUnknown.
func FailureOf(err error) Failure {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Failure
	}
	return FailureUnknown
}

// Remediation renders err with an actionable hint appended for the failure
// modes a user can fix themselves.
func Remediation(err error) string {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return err.Error()
	}

	switch {
	case pe.Failure == FailureModelNotFound && pe.Provider == "ollama":
		model := pe.Model
		if model == "" {
			model = "<model>"
		}
		return fmt.Sprintf("%s\n\nFix:\n  1) Run: ollama pull %s\n  2) Ensure Ollama is running: ollama serve\n", pe, model)

	case pe.Failure == FailureConnection && pe.Provider == "ollama":
		return fmt.Sprintf("%s\n\nFix:\n  1) Start Ollama: ollama serve\n  2) If you have no models: ollama pull llama3.2:1b\n", pe)

	case pe.Failure == FailureMissingCredential:
		return fmt.Sprintf("%s\n\nFix:\n  - Configure the provider API key in your .env file and restart.\n", pe)

	case pe.Failure == FailureResponse && pe.Provider == "ollama":
		return fmt.Sprintf("%s\n\nThis often means Ollama is running but the configured model is missing.\nTry: ollama pull llama3.2:1b\n", pe)

	case pe.Failure == FailureRateLimited:
		if pe.RetryAfter > 0 {
			return fmt.Sprintf("%s\n\nRetry after %s.\n", pe, pe.RetryAfter)
		}
		return fmt.Sprintf("%s\n\nWait a moment and try again.\n", pe)
	}

	return pe.Error()
}
