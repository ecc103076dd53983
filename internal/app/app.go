// Package app wires configuration, discovery, the workspace service and the
// config watcher into one application lifecycle.
package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/simonheimlicher/dprint-vscode/internal/config"
	"github.com/simonheimlicher/dprint-vscode/internal/discovery"
	"github.com/simonheimlicher/dprint-vscode/internal/logging"
	"github.com/simonheimlicher/dprint-vscode/internal/watcher"
	"github.com/simonheimlicher/dprint-vscode/internal/workspace"
)

type App struct {
	Workspace *workspace.Service

	rootPaths []string
	userDir   string
	watcher   *watcher.Watcher
}

// New builds the workspace service for the given folder roots and runs the
// first initialization pass. An empty root list defaults to the working
// directory.
func New(ctx context.Context, rootPaths []string) (*App, error) {
	cfg := config.Get()

	if len(rootPaths) == 0 {
		rootPaths = []string{cfg.WorkingDir}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logging.Debug("Cannot determine home directory", "error", err)
	}

	userDir := ""
	if !cfg.DisableUserConfig {
		userDir = discovery.UserConfigDir(home, runtime.GOOS, map[string]string{
			"DPRINT_CONFIG_DIR": os.Getenv("DPRINT_CONFIG_DIR"),
			"XDG_CONFIG_HOME":   os.Getenv("XDG_CONFIG_HOME"),
			"APPDATA":           os.Getenv("APPDATA"),
		})
	}

	resolver := &discovery.Resolver{
		MaxDepth: cfg.MaxDiscoverDepth,
		Excludes: cfg.Excludes,
		UserDir:  userDir,
		Home:     home,
	}

	roots := make([]discovery.FolderRoot, 0, len(rootPaths))
	for _, path := range rootPaths {
		abs, absErr := absPath(path)
		if absErr != nil {
			logging.Warn("Skipping folder root", "root", path, "error", absErr)
			continue
		}
		roots = append(roots, discovery.FolderRoot{
			Path:               abs,
			ExplicitConfigPath: cfg.FolderConfigPath(abs),
		})
	}

	svc := workspace.NewService(resolver, workspace.NewFolderFactory(cfg), roots)
	if _, err := svc.InitializeFolders(ctx); err != nil {
		return nil, err
	}

	app := &App{
		Workspace: svc,
		userDir:   userDir,
	}
	for _, root := range roots {
		app.rootPaths = append(app.rootPaths, root.Path)
	}
	return app, nil
}

// StartWatcher begins re-initializing the workspace on configuration file
// changes under the folder roots and the user config directory.
func (a *App) StartWatcher(ctx context.Context) error {
	dirs := append(append([]string{}, a.rootPaths...), a.userDir)
	w, err := watcher.New(a.Workspace, dirs)
	if err != nil {
		return err
	}
	a.watcher = w
	w.Start(ctx)
	return nil
}

// Shutdown stops the watcher and disposes the workspace. Idempotent.
func (a *App) Shutdown() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.Workspace.Dispose()
}

func absPath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}
