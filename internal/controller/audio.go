package controller

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// AudioController adjusts the system volume. The "level" param accepts
// "up", "down", "mute" or a 0-100 number.
type AudioController struct {
	run func(name string, args ...string) error
}

func NewAudioController() *AudioController {
	return &AudioController{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (c *AudioController) Name() string { return "audio" }

func (c *AudioController) Actions() []string {
	return []string{"volume", "set_volume"}
}

func (c *AudioController) Handle(action string, params map[string]any) Result {
	if action != "volume" && action != "set_volume" {
		return failure("Unsupported action: %s", action)
	}

	if level, ok := intParam(params, "level"); ok {
		level = clamp(level, 0, 100)
		name, args, supported := volumeSetCommand(level)
		if !supported {
			return failure("Volume control is not supported on %s", runtime.GOOS)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to set volume: %v", err)
		}
		return successData(map[string]any{"level": level}, "Volume set to %d%%", level)
	}

	switch strings.ToLower(strings.TrimSpace(stringParam(params, "level"))) {
	case "mute":
		name, args, supported := volumeStepCommand("mute")
		if !supported {
			return failure("Volume control is not supported on %s", runtime.GOOS)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to mute: %v", err)
		}
		return success("Muted volume")
	case "up", "down":
		direction := strings.ToLower(strings.TrimSpace(stringParam(params, "level")))
		name, args, supported := volumeStepCommand(direction)
		if !supported {
			return failure("Volume control is not supported on %s", runtime.GOOS)
		}
		if err := c.run(name, args...); err != nil {
			return failure("Failed to turn volume %s: %v", direction, err)
		}
		return success("Turned volume %s", direction)
	case "":
		return failure("Missing volume level")
	default:
		return failure("Volume level must be up, down, mute or a number")
	}
}

func volumeSetCommand(level int) (string, []string, bool) {
	switch runtime.GOOS {
	case "linux":
		return "pactl", []string{"set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", level)}, true
	case "darwin":
		return "osascript", []string{"-e", fmt.Sprintf("set volume output volume %d", level)}, true
	default:
		return "", nil, false
	}
}

func volumeStepCommand(direction string) (string, []string, bool) {
	switch runtime.GOOS {
	case "linux":
		switch direction {
		case "up":
			return "pactl", []string{"set-sink-volume", "@DEFAULT_SINK@", "+10%"}, true
		case "down":
			return "pactl", []string{"set-sink-volume", "@DEFAULT_SINK@", "-10%"}, true
		case "mute":
			return "pactl", []string{"set-sink-mute", "@DEFAULT_SINK@", "toggle"}, true
		}
	case "darwin":
		switch direction {
		case "up":
			return "osascript", []string{"-e", "set volume output volume ((output volume of (get volume settings)) + 10)"}, true
		case "down":
			return "osascript", []string{"-e", "set volume output volume ((output volume of (get volume settings)) - 10)"}, true
		case "mute":
			return "osascript", []string{"-e", "set volume output muted true"}, true
		}
	}
	return "", nil, false
}
