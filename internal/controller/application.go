package controller

import (
	"os/exec"
	"runtime"
	"strings"
)

// ApplicationController opens and closes desktop applications.
type ApplicationController struct {
	aliases *Aliases

	// Overridable in tests; the real implementations shell out.
	launch    func(executable string) error
	terminate func(executable string) error
}

// NewApplicationController builds the controller with the given alias
// table (nil means built-in defaults).
func NewApplicationController(aliases *Aliases) *ApplicationController {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	c := &ApplicationController{aliases: aliases}
	c.launch = launchExecutable
	c.terminate = terminateExecutable
	return c
}

func (c *ApplicationController) Name() string { return "applications" }

func (c *ApplicationController) Actions() []string {
	return []string{"open_application", "open_app", "close_application", "close_app"}
}

func (c *ApplicationController) Handle(action string, params map[string]any) Result {
	app := strings.TrimSpace(stringParam(params, "name", "app"))
	if app == "" {
		return failure("Missing application name")
	}

	executable := c.aliases.Resolve(strings.ToLower(app))

	switch action {
	case "open_application", "open_app":
		if err := c.launch(executable); err != nil {
			return failure("Failed to open %s: %v", app, err)
		}
		return success("Opened %s", app)

	case "close_application", "close_app":
		if err := c.terminate(executable); err != nil {
			return failure("Could not close %s: %v", app, err)
		}
		return success("Closed %s", app)
	}

	return failure("Unsupported action: %s", action)
}

func launchExecutable(executable string) error {
	switch runtime.GOOS {
	case "windows":
		// start resolves registered app names as well as executables.
		return exec.Command("cmd", "/c", "start", "", executable).Start()
	case "darwin":
		return exec.Command("open", "-a", executable).Start()
	default:
		return exec.Command(executable).Start()
	}
}

func terminateExecutable(executable string) error {
	switch runtime.GOOS {
	case "windows":
		name := executable
		if !strings.HasSuffix(strings.ToLower(name), ".exe") {
			name += ".exe"
		}
		return exec.Command("taskkill", "/IM", name, "/F").Run()
	default:
		return exec.Command("pkill", "-f", executable).Run()
	}
}
