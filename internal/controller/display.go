package controller

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// DisplayController takes screenshots and adjusts brightness.
type DisplayController struct {
	run        func(name string, args ...string) error
	screenshot func(path string) error
}

func NewDisplayController() *DisplayController {
	c := &DisplayController{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
	c.screenshot = captureScreen
	return c
}

func (c *DisplayController) Name() string { return "display" }

func (c *DisplayController) Actions() []string {
	return []string{"screenshot", "set_brightness"}
}

func (c *DisplayController) Handle(action string, params map[string]any) Result {
	switch action {
	case "screenshot":
		path := stringParam(params, "path")
		if path == "" {
			path = defaultScreenshotPath()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return failure("Failed to prepare screenshot directory: %v", err)
		}
		if err := c.screenshot(path); err != nil {
			return failure("Failed to take screenshot: %v", err)
		}
		return successData(map[string]any{"path": path}, "Screenshot saved to %s", path)

	case "set_brightness":
		value, ok := intParam(params, "value")
		if !ok {
			return failure("Brightness value must be an integer")
		}
		value = clamp(value, 0, 100)
		name, args, supported := brightnessCommand(value)
		if !supported {
			return failure("Brightness control is not supported on %s", runtime.GOOS)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to set brightness: %v", err)
		}
		return successData(map[string]any{"value": value}, "Brightness set to %d%%", value)
	}

	return failure("Unsupported action: %s", action)
}

func defaultScreenshotPath() string {
	home, _ := os.UserHomeDir()
	name := fmt.Sprintf("screenshot-%s.png", time.Now().Format("20060102-150405"))
	return filepath.Join(home, "Pictures", name)
}

func captureScreen(path string) error {
	switch runtime.GOOS {
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; $b=[System.Windows.Forms.SystemInformation]::VirtualScreen; $bmp=New-Object Drawing.Bitmap $b.Width,$b.Height; [Drawing.Graphics]::FromImage($bmp).CopyFromScreen($b.Left,$b.Top,0,0,$bmp.Size); $bmp.Save('%s')`, path)
		return exec.Command("powershell", "-NoProfile", "-Command", script).Run()
	case "darwin":
		return exec.Command("screencapture", "-x", path).Run()
	default:
		return exec.Command("scrot", path).Run()
	}
}

func brightnessCommand(value int) (string, []string, bool) {
	switch runtime.GOOS {
	case "linux":
		return "brightnessctl", []string{"set", fmt.Sprintf("%d%%", value)}, true
	default:
		return "", nil, false
	}
}
