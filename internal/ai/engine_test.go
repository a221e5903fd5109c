package ai

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pcpilot/internal/controller"
)

type fakeProvider struct {
	name     string
	model    string
	initErr  error
	genText  string
	genErr   error
	initWait chan struct{}

	mu        sync.Mutex
	initCalls int
	genCalls  int
}

func (p *fakeProvider) Descriptor() Descriptor { return Descriptor{Name: p.name} }
func (p *fakeProvider) Model() string          { return p.model }

func (p *fakeProvider) Initialize(ctx context.Context) error {
	if p.initWait != nil {
		<-p.initWait
	}
	p.mu.Lock()
	p.initCalls++
	p.mu.Unlock()
	return p.initErr
}

func (p *fakeProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	p.mu.Lock()
	p.genCalls++
	p.mu.Unlock()
	if p.genErr != nil {
		return "", p.genErr
	}
	return p.genText, nil
}

type fakeFactory struct {
	providers map[string]*fakeProvider
	errs      map[string]error
}

func (f *fakeFactory) New(name string) (Provider, error) {
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if p, ok := f.providers[name]; ok {
		return p, nil
	}
	return nil, connectionError(name, "not configured", nil)
}

type fakeRecorder struct {
	mu      sync.Mutex
	inputs  []string
	actions []string
}

func (r *fakeRecorder) Append(ctx context.Context, input, actionName, message string, params map[string]any, success, executed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	r.actions = append(r.actions, actionName)
	return nil
}

// stubSearch claims web_search and records the query instead of opening a
// browser.
type stubSearch struct {
	query string
}

func (s *stubSearch) Name() string      { return "stub-search" }
func (s *stubSearch) Actions() []string { return []string{"web_search"} }
func (s *stubSearch) Handle(action string, params map[string]any) controller.Result {
	q, _ := params["query"].(string)
	s.query = q
	return controller.Result{
		Success: true,
		Message: "Searching Google for: " + q,
		Data:    map[string]any{"url": "https://www.google.com/search?q=" + q},
	}
}

func newTestRouter(t *testing.T) (*controller.Router, *stubSearch) {
	t.Helper()
	stub := &stubSearch{}
	return controller.NewRouter(zap.NewNop(), stub), stub
}

func TestInitializeFallsBackToNextProvider(t *testing.T) {
	groq := &fakeProvider{name: "groq", model: "llama-3.1-8b-instant"}
	factory := &fakeFactory{
		providers: map[string]*fakeProvider{
			"ollama": {name: "ollama", model: "llama3.2:3b", initErr: connectionError("ollama", "not installed", nil)},
			"groq":   groq,
		},
		errs: map[string]error{
			"gemini": missingCredentialError("gemini"),
		},
	}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())
	msg, err := engine.Initialize(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, "groq")
	assert.Equal(t, "groq", engine.Provider())
	assert.True(t, engine.Ready(context.Background()))
}

func TestInitializePreferredFirst(t *testing.T) {
	ollama := &fakeProvider{name: "ollama", model: "llama3.2:3b"}
	groq := &fakeProvider{name: "groq", model: "llama-3.1-8b-instant"}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": ollama, "groq": groq}}

	engine := NewEngine(factory, "groq", false, nil, nil, zap.NewNop())
	_, err := engine.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "groq", engine.Provider())
	assert.Zero(t, ollama.initCalls)
}

func TestInitializeAllFailSurfacesLastError(t *testing.T) {
	factory := &fakeFactory{
		errs: map[string]error{
			"ollama": connectionError("ollama", "not installed", nil),
			"gemini": missingCredentialError("gemini"),
			"groq":   missingCredentialError("groq"),
			"openai": missingCredentialError("openai"),
		},
	}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())
	_, err := engine.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, FailureMissingCredential, FailureOf(err))
	assert.False(t, engine.Ready(context.Background()))

	status := engine.Status(context.Background())
	assert.False(t, status.Initialized)
	assert.NotEmpty(t, status.Error)
}

func TestInitializeIsIdempotent(t *testing.T) {
	ollama := &fakeProvider{name: "ollama", model: "llama3.2:3b"}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": ollama}}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())
	_, err := engine.Initialize(context.Background())
	require.NoError(t, err)
	msg, err := engine.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Already initialized", msg)
	assert.Equal(t, 1, ollama.initCalls)
}

func TestReinitializeRunsSelectionAgain(t *testing.T) {
	ollama := &fakeProvider{name: "ollama", model: "llama3.2:3b"}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": ollama}}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())
	_, err := engine.Initialize(context.Background())
	require.NoError(t, err)

	_, err = engine.Reinitialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ollama.initCalls)
}

func TestConcurrentInitializeSharedAttempt(t *testing.T) {
	gate := make(chan struct{})
	ollama := &fakeProvider{name: "ollama", model: "llama3.2:3b", initWait: gate}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": ollama}}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.Initialize(context.Background())
		}()
	}
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, ollama.initCalls)
}

func TestProcessCommandChatShortCircuits(t *testing.T) {
	provider := &fakeProvider{
		name: "ollama", model: "m",
		genText: `{"action": "chat", "params": {}, "message": "Hello there!"}`,
	}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": provider}}
	router, stub := newTestRouter(t)
	rec := &fakeRecorder{}

	engine := NewEngine(factory, "ollama", false, router, rec, zap.NewNop())
	out := engine.ProcessCommand(context.Background(), "hello")

	assert.True(t, out.Success)
	assert.Equal(t, "chat", out.Action)
	assert.Equal(t, "Hello there!", out.Message)
	assert.False(t, out.Executed)
	assert.Nil(t, out.Result)
	assert.Empty(t, stub.query)
	assert.Equal(t, []string{"hello"}, rec.inputs)
}

func TestProcessCommandRoutesToController(t *testing.T) {
	provider := &fakeProvider{
		name: "ollama", model: "m",
		genText: `{"action": "search_google", "params": {"query": "weather"}, "message": "Searching"}`,
	}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": provider}}
	router, stub := newTestRouter(t)
	rec := &fakeRecorder{}

	engine := NewEngine(factory, "ollama", false, router, rec, zap.NewNop())
	out := engine.ProcessCommand(context.Background(), "search for weather")

	require.True(t, out.Success)
	assert.Equal(t, "web_search", out.Action)
	assert.True(t, out.Executed)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Success)
	assert.Equal(t, "weather", stub.query)
	assert.Equal(t, []string{"web_search"}, rec.actions)
}

func TestProcessCommandProviderFailure(t *testing.T) {
	provider := &fakeProvider{
		name: "ollama", model: "m",
		genErr: modelNotFoundError("ollama", "llama3.2:3b"),
	}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": provider}}
	router, _ := newTestRouter(t)

	engine := NewEngine(factory, "ollama", false, router, nil, zap.NewNop())
	out := engine.ProcessCommand(context.Background(), "open notepad")

	assert.False(t, out.Success)
	assert.Equal(t, "error", out.Action)
	assert.False(t, out.Executed)
	assert.Contains(t, out.Message, "ollama pull")
}

func TestProcessCommandUnroutableAction(t *testing.T) {
	// Parser accepts the action but no controller claims it.
	provider := &fakeProvider{
		name: "ollama", model: "m",
		genText: `{"action": "screenshot", "params": {}, "message": "Taking screenshot"}`,
	}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": provider}}
	router, _ := newTestRouter(t)

	engine := NewEngine(factory, "ollama", false, router, nil, zap.NewNop())
	out := engine.ProcessCommand(context.Background(), "take a screenshot")

	assert.False(t, out.Success)
	assert.True(t, out.Executed)
	require.NotNil(t, out.Result)
	assert.Contains(t, out.Result.Message, "screenshot")
}

func TestSafeProcessDowngradesErrors(t *testing.T) {
	provider := &fakeProvider{
		name: "ollama", model: "m",
		genErr: connectionError("ollama", "refused", nil),
	}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": provider}}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())
	cmd := engine.SafeProcess(context.Background(), "open notepad")

	assert.Equal(t, "chat", cmd.Action)
	assert.Contains(t, cmd.Message, "ollama serve")
}

func TestStartupMessage(t *testing.T) {
	provider := &fakeProvider{name: "ollama", model: "llama3.2:3b"}
	factory := &fakeFactory{providers: map[string]*fakeProvider{"ollama": provider}}

	engine := NewEngine(factory, "ollama", false, nil, nil, zap.NewNop())
	assert.Contains(t, engine.StartupMessage(context.Background()), "not ready")

	_, err := engine.Initialize(context.Background())
	require.NoError(t, err)
	msg := engine.StartupMessage(context.Background())
	assert.Contains(t, msg, "ollama")
	assert.Contains(t, msg, "llama3.2:3b")
}

func TestSimplePromptSelection(t *testing.T) {
	e := NewEngine(nil, "ollama", true, nil, nil, zap.NewNop())
	assert.Equal(t, SimplePrompt(), e.systemPrompt())

	e = NewEngine(nil, "ollama", false, nil, nil, zap.NewNop())
	assert.Equal(t, SystemPrompt(), e.systemPrompt())
}
