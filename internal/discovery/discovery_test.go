package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsUserLevel(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		roots []string
		want  bool
	}{
		{
			name:  "inside single root",
			path:  "/ws/a/dprint.json",
			roots: []string{"/ws/a"},
			want:  false,
		},
		{
			name:  "outside single root",
			path:  "/home/user/.config/dprint/dprint.json",
			roots: []string{"/ws/a"},
			want:  true,
		},
		{
			name:  "empty roots classify everything user-level",
			path:  "/anywhere/dprint.json",
			roots: nil,
			want:  true,
		},
		{
			name:  "inside root A while resolving multi-root set",
			path:  "/ws/a/dprint.json",
			roots: []string{"/ws/a", "/ws/b"},
			want:  false,
		},
		{
			name:  "sibling directory with shared name prefix",
			path:  "/ws/ab/dprint.json",
			roots: []string{"/ws/a"},
			want:  true,
		},
		{
			name:  "config at the root itself",
			path:  "/ws/a",
			roots: []string{"/ws/a"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserLevel(tt.path, tt.roots))
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("/ws/a/b/x.json", "/ws/a"))
	assert.True(t, Within("/ws/a", "/ws/a"))
	assert.False(t, Within("/ws/ab", "/ws/a"))
	assert.False(t, Within("/ws", "/ws/a"))
}

func TestDiscoverFindsWorkspaceConfigs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dprint.json"), "{}")
	writeFile(t, filepath.Join(root, "sub", "dprint.jsonc"), "{}")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "dprint.json"), "{}")
	writeFile(t, filepath.Join(root, "sub", "notes.txt"), "")

	r := &Resolver{MaxDepth: 6}
	candidates := r.Discover([]string{root})

	var paths []string
	for _, c := range candidates {
		assert.False(t, c.UserLevel, "workspace candidate misclassified: %s", c.Path)
		paths = append(paths, c.Path)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "dprint.json"),
		filepath.Join(root, "sub", "dprint.jsonc"),
	}, paths)
}

func TestDiscoverRespectsDepthBound(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d")
	writeFile(t, filepath.Join(deep, "dprint.json"), "{}")

	r := &Resolver{MaxDepth: 2}
	assert.Empty(t, r.Discover([]string{root}))

	r = &Resolver{MaxDepth: 10}
	assert.Len(t, r.Discover([]string{root}), 1)
}

func TestDiscoverRespectsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep", "dprint.json"), "{}")
	writeFile(t, filepath.Join(root, "skip", "dprint.json"), "{}")

	r := &Resolver{MaxDepth: 6, Excludes: []string{"skip/**"}}
	candidates := r.Discover([]string{root})

	require.Len(t, candidates, 1)
	assert.Equal(t, filepath.Join(root, "keep", "dprint.json"), candidates[0].Path)
}

func TestDiscoverUserLevelProbe(t *testing.T) {
	root := t.TempDir()
	userDir := t.TempDir()
	writeFile(t, filepath.Join(userDir, "dprint.json"), "{}")

	r := &Resolver{MaxDepth: 6, UserDir: userDir}
	candidates := r.Discover([]string{root})

	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].UserLevel)
	assert.Equal(t, filepath.Join(userDir, "dprint.json"), candidates[0].Path)
}

func TestDiscoverUserProbeDisabled(t *testing.T) {
	root := t.TempDir()

	r := &Resolver{MaxDepth: 6, UserDir: ""}
	assert.Empty(t, r.Discover([]string{root}))
}

// A config inside root A must never be classified user-level while root B is
// also known, even though it is "outside B".
func TestDiscoverMultiRootIsolation(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, filepath.Join(rootA, "dprint.json"), "{}")

	r := &Resolver{MaxDepth: 6}
	candidates := r.Discover([]string{rootA, rootB})

	require.Len(t, candidates, 1)
	assert.False(t, candidates[0].UserLevel)
}
