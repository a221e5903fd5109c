package controller

import "github.com/atotto/clipboard"

// ClipboardController copies to and reads from the system clipboard.
type ClipboardController struct {
	write func(text string) error
	read  func() (string, error)
}

func NewClipboardController() *ClipboardController {
	return &ClipboardController{
		write: clipboard.WriteAll,
		read:  clipboard.ReadAll,
	}
}

func (c *ClipboardController) Name() string { return "clipboard" }

func (c *ClipboardController) Actions() []string {
	return []string{"clipboard_copy", "clipboard_paste"}
}

func (c *ClipboardController) Handle(action string, params map[string]any) Result {
	switch action {
	case "clipboard_copy":
		text := stringParam(params, "text")
		if text == "" {
			return failure("Missing text")
		}
		if err := c.write(text); err != nil {
			return failure("Failed to copy to clipboard: %v", err)
		}
		return success("Copied to clipboard")

	case "clipboard_paste":
		text, err := c.read()
		if err != nil {
			return failure("Failed to read clipboard: %v", err)
		}
		return successData(map[string]any{"text": text}, "Clipboard content retrieved")
	}

	return failure("Unsupported action: %s", action)
}
