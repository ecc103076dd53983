package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simonheimlicher/dprint-vscode/internal/logging"
)

// FolderRoot is one host-declared project folder. ExplicitConfigPath, when
// set, is the per-folder configuration override and wins over anything
// discovered.
type FolderRoot struct {
	Path               string
	ExplicitConfigPath string
}

// Binding is the resolved configuration for one folder. An empty ConfigPath
// means no configuration was chosen locally but an ancestor directory holds
// one; the binding stays alive and the editor service's own ascending search
// finds it. UseConfigDirAsCwd is set only on the global catch-all binding so
// that include/exclude globs in the user-level config resolve against the
// config file's directory instead of the anchor folder.
type Binding struct {
	Root              string
	ConfigPath        string
	UseConfigDirAsCwd bool
}

// Resolution is the complete outcome of one discovery pass.
type Resolution struct {
	Bindings []Binding
	Global   *Binding
}

// Resolve discovers configuration candidates and applies per-folder
// precedence: explicit setting, then a candidate inside the folder, then the
// first user-level candidate, then an ancestor-directory config (bound
// without an explicit path), and otherwise no binding. A synthetic global
// binding is produced when any user-level candidate exists.
func (r *Resolver) Resolve(roots []FolderRoot) Resolution {
	rootPaths := make([]string, 0, len(roots))
	seenRoots := make(map[string]struct{}, len(roots))
	deduped := make([]FolderRoot, 0, len(roots))
	for _, root := range roots {
		clean := filepath.Clean(root.Path)
		if _, dup := seenRoots[clean]; dup {
			continue
		}
		seenRoots[clean] = struct{}{}
		root.Path = clean
		deduped = append(deduped, root)
		rootPaths = append(rootPaths, clean)
	}

	candidates := r.Discover(rootPaths)

	var userCandidates []Candidate
	for _, c := range candidates {
		if c.UserLevel {
			userCandidates = append(userCandidates, c)
		}
	}

	var res Resolution
	for _, root := range deduped {
		binding, ok := r.resolveFolder(root, candidates, userCandidates)
		if !ok {
			logging.Debug("No configuration applies to folder", "root", root.Path)
			continue
		}
		res.Bindings = append(res.Bindings, binding)
	}

	if len(userCandidates) > 0 && len(deduped) > 0 {
		// Catch-all for files outside every folder root. The anchor root is
		// arbitrary; the config's own directory becomes the working directory.
		res.Global = &Binding{
			Root:              deduped[0].Path,
			ConfigPath:        userCandidates[0].Path,
			UseConfigDirAsCwd: true,
		}
	}

	return res
}

func (r *Resolver) resolveFolder(root FolderRoot, candidates, userCandidates []Candidate) (Binding, bool) {
	if root.ExplicitConfigPath != "" {
		return Binding{
			Root:       root.Path,
			ConfigPath: r.expandPath(root.ExplicitConfigPath, root.Path),
		}, true
	}

	if local := pickLocalCandidate(root.Path, candidates); local != "" {
		return Binding{Root: root.Path, ConfigPath: local}, true
	}

	if len(userCandidates) > 0 {
		return Binding{Root: root.Path, ConfigPath: userCandidates[0].Path}, true
	}

	if ancestorHasConfig(root.Path) {
		// Opened a subdirectory of a larger project: bind without an explicit
		// config and let the editor service search upward itself.
		return Binding{Root: root.Path}, true
	}

	return Binding{}, false
}

// pickLocalCandidate returns the best candidate inside root: the shallowest,
// with lexicographic order as the tie-break.
func pickLocalCandidate(root string, candidates []Candidate) string {
	var local []string
	for _, c := range candidates {
		if !c.UserLevel && Within(c.Path, root) {
			local = append(local, c.Path)
		}
	}
	if len(local) == 0 {
		return ""
	}
	sort.Slice(local, func(i, j int) bool {
		di := strings.Count(local[i], string(filepath.Separator))
		dj := strings.Count(local[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return local[i] < local[j]
	})
	return local[0]
}

// ancestorHasConfig walks up from root looking for a recognized config file.
func ancestorHasConfig(root string) bool {
	dir := filepath.Dir(filepath.Clean(root))
	for {
		for _, name := range ConfigFileNames {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// expandPath resolves an explicit configuration path setting: "~" expands to
// the home directory and relative paths resolve against the folder root.
func (r *Resolver) expandPath(path, root string) string {
	if path == "~" {
		return r.Home
	}
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) || strings.HasPrefix(path, "~/") {
		return filepath.Join(r.Home, path[2:])
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
