package controller

import (
	"os"
	"path/filepath"
	"strings"
)

// FileController opens files/folders with the default handler and creates
// folders.
type FileController struct {
	open func(path string) error
}

func NewFileController() *FileController {
	// Opening a path with the default handler is the same OS call as
	// opening a URL.
	return &FileController{open: openInBrowser}
}

func (c *FileController) Name() string { return "files" }

func (c *FileController) Actions() []string {
	return []string{"file_open", "folder_open", "create_folder"}
}

func (c *FileController) Handle(action string, params map[string]any) Result {
	switch action {
	case "file_open", "folder_open":
		path := expandPath(stringParam(params, "path"))
		if path == "" {
			return failure("Missing path")
		}
		if _, err := os.Stat(path); err != nil {
			return failure("Path does not exist: %s", path)
		}
		if err := c.open(path); err != nil {
			return failure("Failed to open %s: %v", path, err)
		}
		return successData(map[string]any{"path": path}, "Opened %s", path)

	case "create_folder":
		path := expandPath(stringParam(params, "path"))
		if path == "" {
			if name := strings.TrimSpace(stringParam(params, "name")); name != "" {
				cwd, err := os.Getwd()
				if err != nil {
					return failure("Failed to resolve working directory: %v", err)
				}
				path = filepath.Join(cwd, name)
			}
		}
		if path == "" {
			return failure("Missing folder path/name")
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return failure("Failed to create folder: %v", err)
		}
		return successData(map[string]any{"path": path}, "Created folder: %s", path)
	}

	return failure("Unsupported action: %s", action)
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
