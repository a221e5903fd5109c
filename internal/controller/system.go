package controller

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SystemController reports system info and executes power commands
// (lock/shutdown/restart/sleep).
type SystemController struct {
	run func(name string, args ...string) error
}

func NewSystemController() *SystemController {
	return &SystemController{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (c *SystemController) Name() string { return "system" }

func (c *SystemController) Actions() []string {
	return []string{"get_system_info", "system"}
}

func (c *SystemController) Handle(action string, params map[string]any) Result {
	switch action {
	case "get_system_info":
		hostname, _ := os.Hostname()
		return successData(map[string]any{
			"os":       runtime.GOOS,
			"arch":     runtime.GOARCH,
			"hostname": hostname,
			"cpus":     runtime.NumCPU(),
		}, "System info retrieved")

	case "system":
		command := strings.ToLower(strings.TrimSpace(stringParam(params, "command")))
		if command == "" {
			return failure("Missing system command")
		}
		name, args, ok := powerCommand(command)
		if !ok {
			return failure("Unsupported system command: %s", command)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to %s: %v", command, err)
		}
		return success("Executed system command: %s", command)
	}

	return failure("Unsupported action: %s", action)
}

// powerCommand maps a logical power command to one OS invocation.
func powerCommand(command string) (string, []string, bool) {
	switch runtime.GOOS {
	case "windows":
		switch command {
		case "lock":
			return "rundll32", []string{"user32.dll,LockWorkStation"}, true
		case "shutdown":
			return "shutdown", []string{"/s", "/t", "5"}, true
		case "restart":
			return "shutdown", []string{"/r", "/t", "5"}, true
		case "sleep":
			return "rundll32", []string{"powrprof.dll,SetSuspendState", "0,1,0"}, true
		}
	case "darwin":
		switch command {
		case "lock":
			return "pmset", []string{"displaysleepnow"}, true
		case "shutdown":
			return "osascript", []string{"-e", `tell app "System Events" to shut down`}, true
		case "restart":
			return "osascript", []string{"-e", `tell app "System Events" to restart`}, true
		case "sleep":
			return "pmset", []string{"sleepnow"}, true
		}
	default:
		switch command {
		case "lock":
			return "loginctl", []string{"lock-session"}, true
		case "shutdown":
			return "systemctl", []string{"poweroff"}, true
		case "restart":
			return "systemctl", []string{"reboot"}, true
		case "sleep":
			return "systemctl", []string{"suspend"}, true
		}
	}
	return "", nil, false
}
