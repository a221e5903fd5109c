// Package config holds the pcpilot configuration context.
//
// Configuration is an explicit object constructed once at startup and
// passed by reference; there is no ambient global state. Sources, in
// increasing precedence: built-in defaults, the JSON config file, then
// environment variables. Credentials are environment-sourced (optionally
// via a .env file) and are never logged.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	Host           string `json:"host,omitempty"`
	Model          string `json:"model,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	ContextLength  int    `json:"context_length,omitempty"`
}

// CloudConfig configures a hosted chat-completion backend.
type CloudConfig struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
}

// OpenAIConfig configures the OpenAI-compatible backend. BaseURL allows
// pointing the adapter at any compatible endpoint.
type OpenAIConfig struct {
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// Config is the single source of truth for runtime configuration.
type Config struct {
	// Provider selects the preferred backend: ollama, gemini, groq or
	// openai. The engine falls back to the others when the preferred one
	// is not usable.
	Provider string `json:"provider,omitempty"`

	// SimplePrompt switches to the shorter system prompt, which small
	// local models follow more reliably.
	SimplePrompt bool `json:"simple_prompt,omitempty"`

	Ollama OllamaConfig `json:"ollama,omitempty"`
	Gemini CloudConfig  `json:"gemini,omitempty"`
	Groq   CloudConfig  `json:"groq,omitempty"`
	OpenAI OpenAIConfig `json:"openai,omitempty"`

	// HistoryPath is the SQLite command log location. Empty disables the
	// log.
	HistoryPath string `json:"history_path,omitempty"`

	// AliasesPath optionally points at a YAML file mapping friendly
	// application names to executables.
	AliasesPath string `json:"aliases_path,omitempty"`
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pcpilot", "config.json")
	}
	return filepath.Join(home, ".pcpilot", "config.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Provider: "ollama",
		Ollama: OllamaConfig{
			Host:           "http://localhost:11434",
			Model:          "llama3.2:3b",
			TimeoutSeconds: 60,
			ContextLength:  4096,
		},
		Gemini:      CloudConfig{Model: "gemini-2.5-flash", Temperature: 0.1, MaxTokens: 2048},
		Groq:        CloudConfig{Model: "llama-3.1-8b-instant", Temperature: 0.1, MaxTokens: 2048},
		OpenAI:      OpenAIConfig{Model: "gpt-4o-mini"},
		HistoryPath: filepath.Join(home, ".pcpilot", "history.db"),
	}
}

// Load builds the configuration context: defaults, overlaid with the JSON
// file at path (a missing file is not an error), overlaid with environment
// variables. A .env file in the working directory is loaded first so
// credentials can live there.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PCPILOT_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("OLLAMA_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Ollama.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("PCPILOT_HISTORY_PATH"); v != "" {
		c.HistoryPath = v
	}
	if v := os.Getenv("PCPILOT_ALIASES_PATH"); v != "" {
		c.AliasesPath = v
	}
}

// APIKey resolves the credential for a cloud provider. Config file values
// win over environment variables so a per-project override is possible.
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		if c.Gemini.APIKey != "" {
			return c.Gemini.APIKey
		}
		return os.Getenv("GEMINI_API_KEY")
	case "groq":
		if c.Groq.APIKey != "" {
			return c.Groq.APIKey
		}
		return os.Getenv("GROQ_API_KEY")
	case "openai":
		if c.OpenAI.APIKey != "" {
			return c.OpenAI.APIKey
		}
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}
