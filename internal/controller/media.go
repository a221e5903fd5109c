package controller

import (
	"os/exec"
	"runtime"
)

// MediaController drives media-transport keys through the platform's
// player control tool.
type MediaController struct {
	run func(name string, args ...string) error
}

func NewMediaController() *MediaController {
	return &MediaController{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (c *MediaController) Name() string { return "media" }

func (c *MediaController) Actions() []string {
	return []string{"media_play", "media_pause", "media_next", "media_prev"}
}

func (c *MediaController) Handle(action string, params map[string]any) Result {
	name, args, supported := mediaCommand(action)
	if !supported {
		return failure("Media control is not supported on %s", runtime.GOOS)
	}
	if err := c.run(name, args...); err != nil {
		return failure("Media command failed: %v", err)
	}
	return success("Executed %s", action)
}

func mediaCommand(action string) (string, []string, bool) {
	if runtime.GOOS != "linux" {
		return "", nil, false
	}
	switch action {
	case "media_play":
		return "playerctl", []string{"play"}, true
	case "media_pause":
		return "playerctl", []string{"pause"}, true
	case "media_next":
		return "playerctl", []string{"next"}, true
	case "media_prev":
		return "playerctl", []string{"previous"}, true
	}
	return "", nil, false
}
