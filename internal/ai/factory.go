package ai

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"pcpilot/internal/config"
)

// cloudTimeout bounds requests to hosted backends.
const cloudTimeout = 2 * time.Minute

// ProviderFactory builds provider adapters by name. The engine holds one so
// tests can swap in fakes.
type ProviderFactory interface {
	New(name string) (Provider, error)
}

// ConfigFactory builds providers from the runtime configuration.
type ConfigFactory struct {
	cfg *config.Config
	log *zap.Logger
}

func NewConfigFactory(cfg *config.Config, log *zap.Logger) *ConfigFactory {
	return &ConfigFactory{cfg: cfg, log: log}
}

func (f *ConfigFactory) New(name string) (Provider, error) {
	switch name {
	case "ollama":
		timeout := time.Duration(f.cfg.Ollama.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = time.Minute
		}
		return NewOllamaProvider(f.cfg.Ollama.Host, f.cfg.Ollama.Model, timeout, f.cfg.Ollama.ContextLength, f.log), nil

	case "gemini":
		return NewGeminiProvider(f.cfg.APIKey("gemini"), f.cfg.Gemini.Model,
			f.cfg.Gemini.Temperature, f.cfg.Gemini.MaxTokens, cloudTimeout)

	case "groq":
		return NewGroqProvider(f.cfg.APIKey("groq"), f.cfg.Groq.Model,
			f.cfg.Groq.Temperature, f.cfg.Groq.MaxTokens, cloudTimeout)

	case "openai":
		return NewOpenAIProvider(f.cfg.APIKey("openai"), f.cfg.OpenAI.Model,
			f.cfg.OpenAI.BaseURL, cloudTimeout)
	}

	return nil, fmt.Errorf("unsupported provider: %s", name)
}

// fallbackOrder returns the providers to try, configured one first.
func fallbackOrder(preferred string) []string {
	order := []string{"ollama", "gemini", "groq", "openai"}
	candidates := make([]string, 0, len(order)+1)
	candidates = append(candidates, preferred)
	for _, name := range order {
		if name != preferred {
			candidates = append(candidates, name)
		}
	}
	return candidates
}
