package controller

import (
	"os/exec"
	"runtime"
	"strings"
)

// maxProcessesReported caps the process list returned to the model.
const maxProcessesReported = 50

// ProcessController lists running processes.
type ProcessController struct {
	run func(name string, args ...string) (string, error)
}

func NewProcessController() *ProcessController {
	return &ProcessController{
		run: func(name string, args ...string) (string, error) {
			out, err := exec.Command(name, args...).Output()
			return string(out), err
		},
	}
}

func (c *ProcessController) Name() string { return "process" }

func (c *ProcessController) Actions() []string {
	return []string{"list_processes"}
}

func (c *ProcessController) Handle(action string, params map[string]any) Result {
	if action != "list_processes" {
		return failure("Unsupported action: %s", action)
	}

	var out string
	var err error
	if runtime.GOOS == "windows" {
		out, err = c.run("tasklist", "/FO", "CSV", "/NH")
	} else {
		out, err = c.run("ps", "-eo", "comm=")
	}
	if err != nil {
		return failure("Failed to list processes: %v", err)
	}

	names := parseProcessNames(out)
	return successData(map[string]any{"processes": names},
		"Found %d processes", len(names))
}

func parseProcessNames(out string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		// tasklist CSV: "name","pid",...
		if strings.HasPrefix(name, `"`) {
			name = strings.Trim(strings.SplitN(name, ",", 2)[0], `"`)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) >= maxProcessesReported {
			break
		}
	}
	return names
}
