package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectJSON(t *testing.T) {
	cmd := Parse(`{"action": "open_app", "params": {"name": "notepad"}, "message": "Opening Notepad"}`)

	assert.Equal(t, "open_application", cmd.Action)
	assert.Equal(t, "notepad", cmd.Params["name"])
	assert.Equal(t, "Opening Notepad", cmd.Message)
}

func TestParseCanonicalActionNames(t *testing.T) {
	cmd := Parse(`{"action": "web_search", "params": {"query": "weather"}, "message": "Searching"}`)
	assert.Equal(t, "web_search", cmd.Action)

	cmd = Parse(`{"action": "search_google", "params": {"query": "weather"}, "message": "Searching"}`)
	assert.Equal(t, "web_search", cmd.Action)
}

func TestParseEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		cmd := Parse(text)
		assert.Equal(t, "chat", cmd.Action)
		assert.NotEmpty(t, cmd.Message)
	}
}

func TestParsePlainTextBecomesChat(t *testing.T) {
	cmd := Parse("The weather today looks sunny with mild temperatures.")
	assert.Equal(t, "chat", cmd.Action)
	assert.Equal(t, "The weather today looks sunny with mild temperatures.", cmd.Message)
}

func TestParseMarkdownFencedJSON(t *testing.T) {
	text := "```json\n{\"action\": \"screenshot\", \"params\": {}, \"message\": \"Taking screenshot\"}\n```"
	cmd := Parse(text)
	assert.Equal(t, "screenshot", cmd.Action)
}

func TestParseJSONEmbeddedInProse(t *testing.T) {
	text := `Sure! Here is the command you asked for:
{"action": "volume", "params": {"level": 50}, "message": "Setting volume"}
Let me know if you need anything else.`

	cmd := Parse(text)
	require.Equal(t, "volume", cmd.Action)
	assert.Equal(t, float64(50), cmd.Params["level"])
}

func TestParseTruncatedJSON(t *testing.T) {
	// Model ran out of tokens mid-object.
	cmd := Parse(`{"action":"open_app","params":{"name":"notepad"`)

	assert.Equal(t, "open_application", cmd.Action)
	assert.Equal(t, "notepad", cmd.Params["name"])
}

func TestParseTrailingGarbageAfterObject(t *testing.T) {
	cmd := Parse(`{"action": "system", "params": {"command": "lock"}, "message": "Locking"} and that is done`)
	assert.Equal(t, "system", cmd.Action)
	assert.Equal(t, "lock", cmd.Params["command"])
}

func TestParseBracesInsideStrings(t *testing.T) {
	cmd := Parse(`{"action": "type_text", "params": {"text": "func main() { fmt.Println(\"}\") }"}, "message": "Typing"}`)
	require.Equal(t, "type_text", cmd.Action)
	assert.Contains(t, cmd.Params["text"], "}")
}

func TestParseUnknownActionBecomesChat(t *testing.T) {
	cmd := Parse(`{"action": "launch_missiles", "params": {}, "message": "On it"}`)
	assert.Equal(t, "chat", cmd.Action)
	assert.Equal(t, "On it", cmd.Message)
}

func TestParseMissingActionBecomesChat(t *testing.T) {
	raw := `{"params": {}, "message": "hello"}`
	cmd := Parse(raw)
	assert.Equal(t, "chat", cmd.Action)
	assert.Equal(t, "hello", cmd.Message)
}

func TestParseResponseFieldAsMessage(t *testing.T) {
	cmd := Parse(`{"action": "nonsense", "response": "from the response field"}`)
	assert.Equal(t, "chat", cmd.Action)
	assert.Equal(t, "from the response field", cmd.Message)
}

func TestParseNonObjectParams(t *testing.T) {
	cmd := Parse(`{"action": "screenshot", "params": "not an object", "message": "Shot"}`)
	require.Equal(t, "screenshot", cmd.Action)
	assert.NotNil(t, cmd.Params)
	assert.Empty(t, cmd.Params)
}

func TestParsePatternFallbacks(t *testing.T) {
	tests := []struct {
		text   string
		action string
		params map[string]any
	}{
		{"I'm opening the notepad for you", "open_application", map[string]any{"name": "notepad"}},
		{"closing chrome now", "close_application", map[string]any{"name": "chrome"}},
		{"I will mute the sound", "volume", map[string]any{"level": "mute"}},
		{"turning volume up", "volume", map[string]any{"level": "up"}},
		{"let me take a screenshot of that", "screenshot", map[string]any{}},
		{"locking the computer", "system", map[string]any{"command": "lock"}},
		{"shutting the machine, shut down initiated", "system", map[string]any{"command": "shutdown"}},
		{"restarting your pc", "system", map[string]any{"command": "restart"}},
	}

	for _, tt := range tests {
		cmd := Parse(tt.text)
		assert.Equal(t, tt.action, cmd.Action, "input: %q", tt.text)
		for k, v := range tt.params {
			assert.Equal(t, v, cmd.Params[k], "input: %q", tt.text)
		}
	}
}

func TestParsePatternPriorityOpenBeforeLock(t *testing.T) {
	// "open" outranks the later lock pattern.
	cmd := Parse("opening the lockscreen settings")
	assert.Equal(t, "open_application", cmd.Action)
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"{", "}", "{{{{", `{"action":`, "```json", "null", "[1,2,3]",
		`{"action": 42}`, "\x00\xff", `{"action": "open_app", "params": null}`,
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) }, "input: %q", in)
	}
}

func TestParseIdempotentOnCanonicalOutput(t *testing.T) {
	cmd := Parse(`{"action": "open_website", "params": {"url": "https://example.com"}, "message": "Opening"}`)
	require.Equal(t, "open_url", cmd.Action)

	// Feeding an already-canonical action back through keeps it stable.
	again := Parse(`{"action": "open_url", "params": {"url": "https://example.com"}, "message": "Opening"}`)
	assert.Equal(t, cmd.Action, again.Action)
	assert.Equal(t, cmd.Params, again.Params)
}

func TestParseRawIsPreserved(t *testing.T) {
	raw := "  {\"action\": \"screenshot\", \"params\": {}}  "
	cmd := Parse(raw)
	assert.Equal(t, raw, cmd.Raw)
}
