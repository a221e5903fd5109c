package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pcpilot/internal/action"
	"pcpilot/internal/controller"
)

// Recorder persists executed commands. history.Store satisfies it; a nil
// Recorder disables logging.
type Recorder interface {
	Append(ctx context.Context, input, actionName, message string, params map[string]any, success, executed bool) error
}

// Outcome is the result of processing one user command end to end.
type Outcome struct {
	Success  bool               `json:"success"`
	Action   string             `json:"action"`
	Params   map[string]any     `json:"params"`
	Message  string             `json:"message"`
	Executed bool               `json:"executed"`
	Result   *controller.Result `json:"result,omitempty"`
}

// EngineStatus is a diagnostic snapshot.
type EngineStatus struct {
	Initialized    bool           `json:"initialized"`
	Ready          bool           `json:"ready"`
	Provider       string         `json:"provider"`
	Model          string         `json:"model,omitempty"`
	Error          string         `json:"error,omitempty"`
	ProviderStatus map[string]any `json:"provider_status,omitempty"`
}

// Engine orchestrates provider selection, generation, parsing and execution.
// When the preferred provider cannot be brought up it falls back to the other
// known providers in a fixed order.
type Engine struct {
	factory      ProviderFactory
	preferred    string
	simplePrompt bool
	router       *controller.Router
	recorder     Recorder
	log          *zap.Logger

	group singleflight.Group

	mu           sync.Mutex
	provider     Provider
	providerName string
	initialized  bool
	initErr      string
}

func NewEngine(factory ProviderFactory, preferred string, simplePrompt bool, router *controller.Router, recorder Recorder, log *zap.Logger) *Engine {
	return &Engine{
		factory:      factory,
		preferred:    strings.ToLower(preferred),
		simplePrompt: simplePrompt,
		router:       router,
		recorder:     recorder,
		log:          log,
		providerName: strings.ToLower(preferred),
	}
}

// Initialize selects and initializes a working provider. Concurrent callers
// share one attempt. Returns a human-readable status message.
func (e *Engine) Initialize(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return "Already initialized", nil
	}
	e.mu.Unlock()

	res, err, _ := e.group.Do("initialize", func() (any, error) {
		return e.initialize(ctx)
	})
	msg, _ := res.(string)
	return msg, err
}

// Reinitialize discards the current provider selection and runs selection
// again, even if the engine was already initialized.
func (e *Engine) Reinitialize(ctx context.Context) (string, error) {
	e.mu.Lock()
	e.initialized = false
	e.provider = nil
	e.initErr = ""
	e.mu.Unlock()
	return e.Initialize(ctx)
}

func (e *Engine) initialize(ctx context.Context) (string, error) {
	var lastErr error

	for _, name := range fallbackOrder(e.preferred) {
		provider, err := e.factory.New(name)
		if err != nil {
			e.log.Debug("provider unavailable",
				zap.String("provider", name), zap.Error(err))
			lastErr = err
			continue
		}

		if init, ok := provider.(Initializer); ok {
			if err := init.Initialize(ctx); err != nil {
				e.log.Warn("provider initialization failed",
					zap.String("provider", name), zap.Error(err))
				lastErr = err
				continue
			}
		} else if hc, ok := provider.(HealthChecker); ok {
			if err := hc.HealthCheck(ctx); err != nil {
				e.log.Warn("provider health check failed",
					zap.String("provider", name), zap.Error(err))
				lastErr = err
				continue
			}
		}

		e.mu.Lock()
		e.provider = provider
		e.providerName = name
		e.initialized = true
		e.initErr = ""
		e.mu.Unlock()

		msg := fmt.Sprintf("AI engine initialized using %s (%s)", name, provider.Model())
		e.log.Info("engine initialized",
			zap.String("provider", name), zap.String("model", provider.Model()))
		return msg, nil
	}

	if lastErr == nil {
		lastErr = connectionError(e.preferred, "no usable provider", nil)
	}

	e.mu.Lock()
	e.initialized = false
	e.initErr = lastErr.Error()
	e.mu.Unlock()

	e.log.Error("engine initialization failed", zap.Error(lastErr))
	return lastErr.Error(), lastErr
}

// Ready reports whether the engine can serve requests right now.
func (e *Engine) Ready(ctx context.Context) bool {
	e.mu.Lock()
	provider := e.provider
	initialized := e.initialized
	e.mu.Unlock()

	if !initialized || provider == nil {
		return false
	}
	if live, ok := provider.(Liveness); ok {
		return live.Available(ctx)
	}
	return true
}

// Provider reports the active provider name.
func (e *Engine) Provider() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.providerName
}

// Status returns a diagnostic snapshot.
func (e *Engine) Status(ctx context.Context) EngineStatus {
	e.mu.Lock()
	provider := e.provider
	status := EngineStatus{
		Initialized: e.initialized,
		Provider:    e.providerName,
		Error:       e.initErr,
	}
	e.mu.Unlock()

	status.Ready = e.Ready(ctx)
	if provider != nil {
		status.Model = provider.Model()
		if rep, ok := provider.(StatusReporter); ok {
			status.ProviderStatus = rep.Status(ctx)
		}
	}
	return status
}

// StartupMessage renders a one-line readiness banner.
func (e *Engine) StartupMessage(ctx context.Context) string {
	if e.Ready(ctx) {
		e.mu.Lock()
		name := e.providerName
		model := e.provider.Model()
		e.mu.Unlock()
		return fmt.Sprintf("AI ready - using %s (%s)", name, model)
	}

	e.mu.Lock()
	reason := e.initErr
	e.mu.Unlock()
	if reason == "" {
		reason = "not initialized"
	}
	return fmt.Sprintf("AI not ready - %s", reason)
}

func (e *Engine) systemPrompt() string {
	if e.simplePrompt {
		return SimplePrompt()
	}
	return SystemPrompt()
}

// GenerateRaw sends input to the active provider, initializing first when
// needed.
func (e *Engine) GenerateRaw(ctx context.Context, input string) (string, error) {
	if !e.Ready(ctx) {
		if _, err := e.Initialize(ctx); err != nil {
			return "", err
		}
	}

	e.mu.Lock()
	provider := e.provider
	e.mu.Unlock()
	if provider == nil {
		return "", connectionError(e.Provider(), "no active provider", nil)
	}

	return provider.Generate(ctx, input, e.systemPrompt())
}

// Process generates a response for input and parses it into a Command.
func (e *Engine) Process(ctx context.Context, input string) (Command, error) {
	raw, err := e.GenerateRaw(ctx, input)
	if err != nil {
		return Command{}, err
	}
	return Parse(raw), nil
}

// SafeProcess never returns an error: provider failures become chat Commands
// carrying a remediation hint.
func (e *Engine) SafeProcess(ctx context.Context, input string) Command {
	cmd, err := e.Process(ctx, input)
	if err != nil {
		return Command{
			Action:  action.Chat,
			Params:  map[string]any{},
			Message: Remediation(err),
			Raw:     err.Error(),
		}
	}
	return cmd
}

// ProcessCommand runs the full pipeline: generate, parse, route, record. It
// never panics; handler or provider failures surface as a failed Outcome.
func (e *Engine) ProcessCommand(ctx context.Context, input string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic while processing command", zap.Any("panic", r))
			out = Outcome{
				Success: false,
				Action:  "error",
				Params:  map[string]any{},
				Message: fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	if !e.Ready(ctx) {
		if msg, err := e.Initialize(ctx); err != nil {
			return Outcome{
				Success: false,
				Action:  "error",
				Params:  map[string]any{},
				Message: msg,
			}
		}
	}

	e.log.Debug("sending to provider", zap.String("input", input))
	raw, err := e.GenerateRaw(ctx, input)
	if err != nil {
		return Outcome{
			Success: false,
			Action:  "error",
			Params:  map[string]any{},
			Message: Remediation(err),
		}
	}
	e.log.Debug("raw provider response", zap.Int("length", len(raw)))

	cmd := Parse(raw)
	e.log.Info("parsed command",
		zap.String("action", cmd.Action), zap.Any("params", cmd.Params))

	if cmd.Action == action.Chat {
		message := cmd.Message
		if message == "" {
			message = strings.TrimSpace(raw)
		}
		out = Outcome{
			Success: true,
			Action:  action.Chat,
			Params:  map[string]any{},
			Message: message,
		}
		e.record(ctx, input, out)
		return out
	}

	result := e.router.Execute(cmd.Action, cmd.Params)

	message := cmd.Message
	if message == "" {
		message = result.Message
	}

	out = Outcome{
		Success:  result.Success,
		Action:   cmd.Action,
		Params:   cmd.Params,
		Message:  message,
		Executed: true,
		Result:   &result,
	}
	e.record(ctx, input, out)
	return out
}

func (e *Engine) record(ctx context.Context, input string, out Outcome) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Append(ctx, input, out.Action, out.Message, out.Params, out.Success, out.Executed); err != nil {
		e.log.Warn("failed to record command", zap.Error(err))
	}
}
