// Package discovery locates dprint configuration files across workspace
// folders and the user-level configuration directory, classifies them, and
// resolves which configuration binds to which folder.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/simonheimlicher/dprint-vscode/internal/logging"
)

// ConfigFileNames are the configuration filenames dprint recognizes.
var ConfigFileNames = []string{"dprint.json", "dprint.jsonc", ".dprint.json", ".dprint.jsonc"}

// Directories never descended into during discovery.
var ignoreDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	"node_modules": {},
	"target":       {},
	"dist":         {},
	"out":          {},
	"vendor":       {},
}

// Candidate is one discovered configuration file. UserLevel is derived: true
// iff the file lives outside every known folder root.
type Candidate struct {
	Path      string
	UserLevel bool
}

// Resolver discovers and resolves configuration for a set of folder roots.
type Resolver struct {
	// MaxDepth bounds the discovery walk below each folder root.
	MaxDepth int

	// Excludes are doublestar patterns, matched against root-relative paths,
	// that discovery skips in addition to the built-in ignore directories.
	Excludes []string

	// UserDir is the user-level configuration directory. Empty disables the
	// user-level probe and with it the global catch-all binding.
	UserDir string

	// Home is used for "~" expansion of explicit configuration paths.
	Home string
}

// Discover walks each folder root for recognized configuration filenames and
// probes the user-level directory. Folder-scoped candidates come first, in
// walk order; user-level candidates follow.
func (r *Resolver) Discover(roots []string) []Candidate {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 6
	}

	seen := make(map[string]struct{})
	var candidates []Candidate

	add := func(path string) {
		path = filepath.Clean(path)
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, Candidate{
			Path:      path,
			UserLevel: IsUserLevel(path, roots),
		})
	}

	for _, root := range roots {
		r.walkRoot(root, maxDepth, add)
	}

	if r.UserDir != "" {
		for _, name := range ConfigFileNames {
			path := filepath.Join(r.UserDir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				add(path)
			}
		}
	}

	return candidates
}

func (r *Resolver) walkRoot(root string, maxDepth int, add func(string)) {
	root = filepath.Clean(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Debug("Skipping unreadable path during discovery", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ignored := ignoreDirs[d.Name()]; ignored {
				return fs.SkipDir
			}
			if strings.Count(rel, string(filepath.Separator))+1 >= maxDepth {
				return fs.SkipDir
			}
			if r.excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}

		if !isConfigFileName(d.Name()) || r.excluded(rel) {
			return nil
		}
		add(path)
		return nil
	})
	if err != nil {
		logging.Warn("Configuration discovery failed for folder", "root", root, "error", err)
	}
}

func (r *Resolver) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range r.Excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isConfigFileName(name string) bool {
	for _, candidate := range ConfigFileNames {
		if name == candidate {
			return true
		}
	}
	return false
}

// IsUserLevel reports whether path lies outside every root in roots. The full
// root set is consulted so that, in a multi-root workspace, folder A's
// configuration is never mistaken for "outside the workspace" while resolving
// folder B. An empty root set classifies everything as user-level.
func IsUserLevel(path string, roots []string) bool {
	for _, root := range roots {
		if Within(path, root) {
			return false
		}
	}
	return true
}

// Within reports whether path is root or a descendant of root, matching on
// path-segment boundaries: /ws/ab is not within /ws/a.
func Within(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
