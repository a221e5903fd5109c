package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pcpilot/internal/action"
)

// Command is the executable form of a model response. Action is always a
// controller-facing name or action.Chat.
type Command struct {
	Action  string
	Params  map[string]any
	Message string
	Raw     string
}

const fallbackHelp = "I'm not sure what you mean. Try saying 'open notepad' or 'search google for weather'."

var (
	jsonObjectRe = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	fenceOpenRe  = regexp.MustCompile("```json?\\s*")
	fenceRe      = regexp.MustCompile("```\\s*")
	fenceLeadRe  = regexp.MustCompile("^```json?\\s*")
	fenceTailRe  = regexp.MustCompile("\\s*```$")

	openAppRe    = regexp.MustCompile(`(?:i'?m |i am |i will |)open(?:ing|ed|)?\s+(?:the\s+)?(\w+)`)
	closeAppRe   = regexp.MustCompile(`clos(?:ing|ed|e)?\s+(?:the\s+)?(\w+)`)
	volumeRe     = regexp.MustCompile(`volume\s+(up|down)`)
	screenshotRe = regexp.MustCompile(`screenshot|capture\s*(?:the\s*)?screen`)
	lockRe       = regexp.MustCompile(`lock\s*(?:the\s*)?(computer|pc|screen)?`)
	shutdownRe   = regexp.MustCompile(`shut\s*down`)
	restartRe    = regexp.MustCompile(`restart`)
)

// Parse turns raw model output into a Command. It never fails: anything that
// cannot be recognized as a command becomes a chat Command carrying the text.
func Parse(text string) Command {
	raw := text
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return Command{Action: action.Chat, Params: map[string]any{}, Message: fallbackHelp, Raw: raw}
	}

	if strings.HasPrefix(trimmed, "{") {
		if cmd, ok := tryDirectJSON(trimmed, raw); ok {
			return cmd
		}
	}

	if cmd, ok := tryExtractJSON(trimmed, raw); ok {
		return cmd
	}

	if cmd, ok := tryRepairJSON(trimmed, raw); ok {
		return cmd
	}

	if cmd, ok := tryPatternMatch(trimmed); ok {
		return cmd
	}

	return Command{Action: action.Chat, Params: map[string]any{}, Message: trimmed, Raw: raw}
}

func tryDirectJSON(text, raw string) (Command, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return Command{}, false
	}
	return formatCommand(data, raw), true
}

// tryExtractJSON pulls a JSON object out of surrounding prose or markdown
// fences.
func tryExtractJSON(text, raw string) (Command, bool) {
	cleaned := fenceOpenRe.ReplaceAllString(text, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")

	for _, match := range jsonObjectRe.FindAllString(cleaned, -1) {
		var data map[string]any
		if err := json.Unmarshal([]byte(match), &data); err != nil {
			continue
		}
		if _, ok := data["action"]; !ok {
			continue
		}
		return formatCommand(data, raw), true
	}

	if strings.HasPrefix(cleaned, "{") {
		var data map[string]any
		if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
			return formatCommand(data, raw), true
		}
	}

	return Command{}, false
}

// tryRepairJSON fixes the common breakages: stray fence markers, leading
// prose before the object, trailing garbage after it, and truncated output
// missing closing braces.
func tryRepairJSON(text, raw string) (Command, bool) {
	fixed := fenceLeadRe.ReplaceAllString(text, "")
	fixed = fenceTailRe.ReplaceAllString(fixed, "")

	if i := strings.Index(fixed, "{"); i > 0 {
		fixed = fixed[i:]
	}
	if !strings.HasPrefix(fixed, "{") {
		return Command{}, false
	}

	// Scan for the matching close brace, string- and escape-aware.
	depth := 0
	inString := false
	escaped := false
	end := -1
	for i, ch := range fixed {
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					end = i + 1
				}
			}
		}
		if end > 0 {
			break
		}
	}

	if end > 0 {
		var data map[string]any
		if err := json.Unmarshal([]byte(fixed[:end]), &data); err == nil {
			return formatCommand(data, raw), true
		}
		return Command{}, false
	}

	// Truncated output: close what the model left open.
	if depth > 0 {
		completed := fixed + strings.Repeat("}", depth)
		var data map[string]any
		if err := json.Unmarshal([]byte(completed), &data); err == nil {
			return formatCommand(data, raw), true
		}
	}

	return Command{}, false
}

// tryPatternMatch salvages plain-text answers that clearly describe one of
// the common commands.
func tryPatternMatch(text string) (Command, bool) {
	lower := strings.ToLower(text)

	if m := openAppRe.FindStringSubmatch(lower); m != nil {
		name := m[1]
		return Command{
			Action:  "open_application",
			Params:  map[string]any{"name": name},
			Message: fmt.Sprintf("Opening %s", name),
			Raw:     text,
		}, true
	}

	if m := closeAppRe.FindStringSubmatch(lower); m != nil {
		name := m[1]
		return Command{
			Action:  "close_application",
			Params:  map[string]any{"name": name},
			Message: fmt.Sprintf("Closing %s", name),
			Raw:     text,
		}, true
	}

	if strings.Contains(lower, "mute") {
		return Command{
			Action:  "volume",
			Params:  map[string]any{"level": "mute"},
			Message: "Muting volume",
			Raw:     text,
		}, true
	}

	if m := volumeRe.FindStringSubmatch(lower); m != nil {
		level := m[1]
		return Command{
			Action:  "volume",
			Params:  map[string]any{"level": level},
			Message: fmt.Sprintf("Turning volume %s", level),
			Raw:     text,
		}, true
	}

	if screenshotRe.MatchString(lower) {
		return Command{
			Action:  "screenshot",
			Params:  map[string]any{},
			Message: "Taking screenshot",
			Raw:     text,
		}, true
	}

	if lockRe.MatchString(lower) {
		return Command{
			Action:  "system",
			Params:  map[string]any{"command": "lock"},
			Message: "Locking computer",
			Raw:     text,
		}, true
	}

	if shutdownRe.MatchString(lower) {
		return Command{
			Action:  "system",
			Params:  map[string]any{"command": "shutdown"},
			Message: "Shutting down",
			Raw:     text,
		}, true
	}

	if restartRe.MatchString(lower) {
		return Command{
			Action:  "system",
			Params:  map[string]any{"command": "restart"},
			Message: "Restarting",
			Raw:     text,
		}, true
	}

	return Command{}, false
}

// formatCommand validates parsed JSON against the action catalog. Unknown or
// missing actions degrade to chat rather than failing.
func formatCommand(data map[string]any, raw string) Command {
	name, _ := data["action"].(string)
	normalized, known := action.Normalize(name)
	if !known {
		return Command{
			Action:  action.Chat,
			Params:  map[string]any{},
			Message: messageField(data, strings.TrimSpace(raw)),
			Raw:     raw,
		}
	}

	params, ok := data["params"].(map[string]any)
	if !ok {
		params = map[string]any{}
	}

	return Command{
		Action:  normalized,
		Params:  params,
		Message: messageField(data, ""),
		Raw:     raw,
	}
}

func messageField(data map[string]any, fallback string) string {
	for _, key := range []string{"message", "response"} {
		switch v := data[key].(type) {
		case nil:
		case string:
			return v
		default:
			return fmt.Sprint(v)
		}
	}
	return fallback
}
