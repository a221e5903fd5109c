package controller

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Aliases maps friendly application names to executables. The built-in
// table covers the common cases; a YAML file can extend or override it.
type Aliases struct {
	mu      sync.RWMutex
	entries map[string]string
}

// DefaultAliases returns the built-in table.
func DefaultAliases() *Aliases {
	return &Aliases{entries: map[string]string{
		"notepad":    "notepad.exe",
		"word":       "WINWORD.EXE",
		"excel":      "EXCEL.EXE",
		"powerpoint": "POWERPNT.EXE",
		"chrome":     "google-chrome",
		"firefox":    "firefox",
		"edge":       "msedge",
		"vscode":     "code",
		"code":       "code",
		"calculator": "gnome-calculator",
		"explorer":   "explorer.exe",
		"cmd":        "cmd.exe",
		"powershell": "powershell.exe",
		"spotify":    "spotify",
		"discord":    "discord",
		"steam":      "steam",
		"terminal":   "gnome-terminal",
	}}
}

// LoadAliases reads a YAML name->executable mapping and overlays it on the
// defaults.
func LoadAliases(path string) (*Aliases, error) {
	a := DefaultAliases()
	if err := a.reload(path); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Aliases) reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read aliases %s: %w", path, err)
	}
	var overlay map[string]string
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse aliases %s: %w", path, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for name, exe := range overlay {
		a.entries[name] = exe
	}
	return nil
}

// Resolve maps a friendly name to its executable, or returns the name
// unchanged when no alias exists.
func (a *Aliases) Resolve(name string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if exe, ok := a.entries[name]; ok {
		return exe
	}
	return name
}

// Watch reloads the alias file whenever it changes, until ctx is done.
// Reload errors are logged and the previous table stays in effect.
func (a *Aliases) Watch(ctx context.Context, path string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("alias watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					if err := a.reload(path); err != nil {
						log.Warn("alias reload failed", zap.Error(err))
					} else {
						log.Info("aliases reloaded", zap.String("path", path))
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("alias watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
