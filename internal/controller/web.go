package controller

import (
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// WebController opens URLs, search results, and YouTube in the default
// browser.
type WebController struct {
	// open launches the URL in a browser; overridable in tests.
	open func(rawURL string) error
}

func NewWebController() *WebController {
	return &WebController{open: openInBrowser}
}

func (c *WebController) Name() string { return "web" }

func (c *WebController) Actions() []string {
	return []string{"open_url", "open_website", "web_search", "search_google", "open_youtube"}
}

func (c *WebController) Handle(action string, params map[string]any) Result {
	switch action {
	case "open_url", "open_website":
		u := strings.TrimSpace(stringParam(params, "url"))
		if u == "" {
			return failure("Missing url")
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			u = "https://" + u
		}
		if err := c.open(u); err != nil {
			return failure("Failed to open URL: %v", err)
		}
		return success("Opened URL: %s", u)

	case "web_search", "search_google":
		query := strings.TrimSpace(stringParam(params, "query"))
		if query == "" {
			return failure("Missing query")
		}
		u := "https://www.google.com/search?q=" + url.QueryEscape(query)
		if err := c.open(u); err != nil {
			return failure("Failed to search: %v", err)
		}
		return successData(map[string]any{"url": u}, "Searching Google for: %s", query)

	case "open_youtube":
		search := strings.TrimSpace(stringParam(params, "search"))
		u := "https://www.youtube.com"
		if search != "" {
			u = "https://www.youtube.com/results?search_query=" + url.QueryEscape(search)
		}
		if err := c.open(u); err != nil {
			return failure("Failed to open YouTube: %v", err)
		}
		if search != "" {
			return successData(map[string]any{"url": u}, "Opening YouTube search: %s", search)
		}
		return successData(map[string]any{"url": u}, "Opening YouTube")
	}

	return failure("Unsupported action: %s", action)
}

func openInBrowser(rawURL string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	case "darwin":
		return exec.Command("open", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}
