// Package ollama manages the local Ollama backend: installation detection,
// service startup, and model verification.
//
// Its job is to eliminate opaque provider failures (the classic HTTP 404
// from a missing model) by verifying the whole chain before the first real
// request: installed -> running -> model available -> answers a prompt.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHost is where a stock Ollama install listens.
const DefaultHost = "http://localhost:11434"

// defaultPullModel is the small model fetched automatically when no model
// is installed at all.
const defaultPullModel = "llama3.2:1b"

// ModelInfo is one entry from the /api/tags inventory.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

// Helper verifies and manages a single Ollama endpoint.
type Helper struct {
	host   string
	client *http.Client
	log    *zap.Logger

	// Service-start polling budget. Overridable in tests.
	startAttempts int
	startInterval time.Duration

	// Injection points so tests never touch the real system.
	lookPath     func(file string) (string, error)
	installPaths []string
	startProcess func() error
	runPull      func(ctx context.Context, model string) error
}

// NewHelper creates a helper for the given host (DefaultHost when empty).
func NewHelper(host string, log *zap.Logger) *Helper {
	if host == "" {
		host = DefaultHost
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &Helper{
		host:          strings.TrimRight(host, "/"),
		client:        &http.Client{Timeout: 10 * time.Second},
		log:           log,
		startAttempts: 30,
		startInterval: time.Second,
		lookPath:      exec.LookPath,
		installPaths:  commonInstallPaths(),
	}
	h.startProcess = func() error {
		cmd := exec.Command("ollama", "serve")
		cmd.Stdout = nil
		cmd.Stderr = nil
		return cmd.Start()
	}
	h.runPull = func(ctx context.Context, model string) error {
		out, err := exec.CommandContext(ctx, "ollama", "pull", model).CombinedOutput()
		if err != nil {
			msg := strings.TrimSpace(string(out))
			if msg == "" {
				return err
			}
			return fmt.Errorf("%s", msg)
		}
		return nil
	}
	return h
}

// Host returns the endpoint this helper manages.
func (h *Helper) Host() string { return h.host }

func commonInstallPaths() []string {
	paths := []string{
		"/usr/local/bin/ollama",
		"/usr/bin/ollama",
		"/opt/homebrew/bin/ollama",
	}
	if v := os.Getenv("LOCALAPPDATA"); v != "" {
		paths = append(paths, filepath.Join(v, "Programs", "Ollama", "ollama.exe"))
	}
	if v := os.Getenv("PROGRAMFILES"); v != "" {
		paths = append(paths, filepath.Join(v, "Ollama", "ollama.exe"))
	}
	return paths
}

// IsInstalled reports whether the ollama executable can be found. Pure
// predicate; no network access, no side effects.
func (h *Helper) IsInstalled() bool {
	if p, err := h.lookPath("ollama"); err == nil {
		h.log.Debug("ollama executable found", zap.String("path", p))
		return true
	}
	for _, p := range h.installPaths {
		if _, err := os.Stat(p); err == nil {
			h.log.Debug("ollama executable found", zap.String("path", p))
			return true
		}
	}
	return false
}

// IsRunning probes the inventory endpoint with a short deadline. A
// connection refusal means "not running", never an error.
func (h *Helper) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StartService spawns "ollama serve" detached and polls until the endpoint
// answers, up to the configured budget. Already-running is a no-op success.
func (h *Helper) StartService(ctx context.Context) (bool, string) {
	if h.IsRunning(ctx) {
		return true, "Ollama is already running"
	}

	h.log.Info("starting ollama service")
	if err := h.startProcess(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return false, "Ollama executable not found. Please install Ollama first."
		}
		return false, fmt.Sprintf("Failed to start Ollama: %v", err)
	}

	for i := 0; i < h.startAttempts; i++ {
		select {
		case <-ctx.Done():
			return false, fmt.Sprintf("Cancelled while waiting for Ollama to start: %v", ctx.Err())
		case <-time.After(h.startInterval):
		}
		if h.IsRunning(ctx) {
			h.log.Info("ollama service started")
			return true, "Ollama service started successfully"
		}
		h.log.Debug("waiting for ollama to start", zap.Int("attempt", i+1), zap.Int("budget", h.startAttempts))
	}

	return false, fmt.Sprintf("Ollama service failed to start within %d seconds", h.startAttempts)
}

// InstalledModels lists the backend's model inventory. Any failure yields
// an empty list: "no models known" is a state, not an error.
func (h *Helper) InstalledModels(ctx context.Context) []ModelInfo {
	if !h.IsRunning(ctx) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.host+"/api/tags", nil)
	if err != nil {
		return nil
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warn("model inventory query failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		h.log.Warn("model inventory decode failed", zap.Error(err))
		return nil
	}
	return body.Models
}

// IsModelInstalled checks the inventory for a model. A tagged name
// (llama3.2:3b) requires an exact match; an untagged name accepts any tag
// of the same family.
func (h *Helper) IsModelInstalled(ctx context.Context, model string) bool {
	installed := h.InstalledModels(ctx)

	if strings.Contains(model, ":") {
		for _, m := range installed {
			if m.Name == model {
				return true
			}
		}
		return false
	}

	family := strings.SplitN(model, ":", 2)[0]
	for _, m := range installed {
		if strings.SplitN(m.Name, ":", 2)[0] == family {
			return true
		}
	}
	return false
}

// FirstAvailableModel returns the first installed model name, or "".
func (h *Helper) FirstAvailableModel(ctx context.Context) string {
	models := h.InstalledModels(ctx)
	if len(models) == 0 {
		return ""
	}
	return models[0].Name
}

// PullModel fetches a model, preferring the CLI (better progress handling
// across versions) and falling back to the HTTP API.
func (h *Helper) PullModel(ctx context.Context, model string) (bool, string) {
	if !h.IsRunning(ctx) {
		ok, msg := h.StartService(ctx)
		if !ok {
			return false, fmt.Sprintf("Cannot pull model: %s", msg)
		}
	}

	h.log.Info("pulling model", zap.String("model", model))

	cliErr := h.runPull(ctx, model)
	if cliErr == nil {
		return true, fmt.Sprintf("Model %s installed successfully", model)
	}
	if !errors.Is(cliErr, exec.ErrNotFound) {
		h.log.Debug("cli pull failed, trying API", zap.Error(cliErr))
	}

	payload, _ := json.Marshal(map[string]string{"name": model})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.host+"/api/pull", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Sprintf("Failed to pull model: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("Failed to pull model: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("Failed to pull model: HTTP %d", resp.StatusCode)
	}

	if h.IsModelInstalled(ctx, model) {
		return true, fmt.Sprintf("Model %s installed successfully", model)
	}
	return false, "Model pull completed but model not found"
}

// EnsureReady walks the readiness chain for the preferred model and
// returns (ok, message, model). Not-installed is terminal with an
// installation hint; no model at all triggers one automatic pull of a
// small default before giving up.
func (h *Helper) EnsureReady(ctx context.Context, preferred string) (bool, string, string) {
	if !h.IsInstalled() {
		return false,
			"Ollama is not installed. Install it from https://ollama.com/download and restart the application.",
			""
	}

	if !h.IsRunning(ctx) {
		ok, msg := h.StartService(ctx)
		if !ok {
			return false, msg, ""
		}
	}

	if h.IsModelInstalled(ctx, preferred) {
		return true, fmt.Sprintf("Using model: %s", preferred), preferred
	}

	if existing := h.FirstAvailableModel(ctx); existing != "" {
		h.log.Info("preferred model missing, using available model",
			zap.String("preferred", preferred), zap.String("using", existing))
		return true, fmt.Sprintf("Using available model: %s", existing), existing
	}

	ok, msg := h.PullModel(ctx, defaultPullModel)
	if ok {
		return true, fmt.Sprintf("Downloaded and using model: %s", defaultPullModel), defaultPullModel
	}
	return false,
		fmt.Sprintf("No Ollama models available. Please run: ollama pull %s. Error: %s", defaultPullModel, msg),
		""
}

// TestGeneration sends a minimal low-token prompt; any 200 is proof of a
// working model. Used as the final gate before declaring readiness.
func (h *Helper) TestGeneration(ctx context.Context, model string) (bool, string) {
	payload, _ := json.Marshal(map[string]any{
		"model":   model,
		"prompt":  "Say 'OK' and nothing else.",
		"stream":  false,
		"options": map[string]any{"num_predict": 10},
	})

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Sprintf("Model test failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("Model test failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, "Model is working correctly"
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Sprintf("Model '%s' not found", model)
	default:
		return false, fmt.Sprintf("Model test failed: HTTP %d", resp.StatusCode)
	}
}

// InstallationInstructions returns the manual-remediation text shown when
// Ollama is missing.
func InstallationInstructions() string {
	return strings.Join([]string{
		"Ollama provides free local AI - no API keys needed.",
		"  1. Go to: https://ollama.com/download",
		"  2. Install Ollama",
		"  3. Run: ollama pull " + defaultPullModel,
		"  4. Restart this application",
	}, "\n")
}
