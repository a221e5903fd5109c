package controller

import (
	"os/exec"
	"runtime"
	"strings"
)

// InputController types text and presses keyboard shortcuts via the
// platform's input injection tool.
type InputController struct {
	run func(name string, args ...string) error
}

func NewInputController() *InputController {
	return &InputController{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (c *InputController) Name() string { return "input" }

func (c *InputController) Actions() []string {
	return []string{"type_text", "hotkey"}
}

func (c *InputController) Handle(action string, params map[string]any) Result {
	switch action {
	case "type_text":
		text := stringParam(params, "text")
		if text == "" {
			return failure("Missing text")
		}
		name, args, supported := typeCommand(text)
		if !supported {
			return failure("Text input is not supported on %s", runtime.GOOS)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to type text: %v", err)
		}
		return success("Typed %d characters", len(text))

	case "hotkey":
		keys := keysParam(params)
		if len(keys) == 0 {
			return failure("Missing keys")
		}
		name, args, supported := hotkeyCommand(keys)
		if !supported {
			return failure("Hotkeys are not supported on %s", runtime.GOOS)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to press %s: %v", strings.Join(keys, "+"), err)
		}
		return success("Pressed %s", strings.Join(keys, "+"))
	}

	return failure("Unsupported action: %s", action)
}

// keysParam accepts ["ctrl","c"] or "ctrl+c".
func keysParam(params map[string]any) []string {
	switch v := params["keys"].(type) {
	case []any:
		keys := make([]string, 0, len(v))
		for _, k := range v {
			if s, ok := k.(string); ok && s != "" {
				keys = append(keys, strings.ToLower(s))
			}
		}
		return keys
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(strings.ToLower(v), "+")
	default:
		return nil
	}
}

func typeCommand(text string) (string, []string, bool) {
	switch runtime.GOOS {
	case "linux":
		return "xdotool", []string{"type", "--delay", "10", text}, true
	case "darwin":
		return "osascript", []string{"-e", `tell app "System Events" to keystroke ` + appleScriptQuote(text)}, true
	default:
		return "", nil, false
	}
}

func hotkeyCommand(keys []string) (string, []string, bool) {
	switch runtime.GOOS {
	case "linux":
		return "xdotool", []string{"key", strings.Join(keys, "+")}, true
	default:
		return "", nil, false
	}
}

func appleScriptQuote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
