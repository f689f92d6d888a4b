package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree materialises id->content files under a fresh root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for id, content := range files {
		path := filepath.Join(root, filepath.FromSlash(id))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func fileIDs(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.FileID)
	}
	return out
}

func TestDiscover_RecursiveSortedByFileID(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/b/Bar.cpp":  "x",
		"src/a/Foo.java": "x",
		"README.md":      "x",
	})

	files, diags, err := Discover(Options{Root: root, Recursive: true})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, []string{"README.md", "src/a/Foo.java", "src/b/Bar.cpp"}, fileIDs(files))
}

func TestDiscover_NonRecursiveStopsAtRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"top.java":      "x",
		"sub/deep.java": "x",
	})

	files, _, err := Discover(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"top.java"}, fileIDs(files))
}

func TestDiscover_IncludeAndExcludeGlobs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/Foo.java":       "x",
		"src/Bar.cpp":        "x",
		"vendor/Vendor.java": "x",
	})

	files, _, err := Discover(Options{
		Root:         root,
		Recursive:    true,
		IncludeGlobs: []string{"**/*.java"},
		ExcludeGlobs: []string{"vendor/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Foo.java"}, fileIDs(files))
}

func TestDiscover_MaxFileSize(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.java": "x",
		"big.java":   "this file is larger than the limit\n",
	})

	files, diags, err := Discover(Options{Root: root, Recursive: true, MaxFileSizeBytes: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.java"}, fileIDs(files))
	require.Len(t, diags, 1)
	assert.Equal(t, "io.too_large", diags[0].Code)
	assert.Equal(t, "big.java", diags[0].FileID)
}

func TestDiscover_SymlinksSkippedByDefault(t *testing.T) {
	root := writeTree(t, map[string]string{"real.java": "x"})
	require.NoError(t, os.Symlink(
		filepath.Join(root, "real.java"),
		filepath.Join(root, "link.java"),
	))

	files, _, err := Discover(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"real.java"}, fileIDs(files))

	files, _, err = Discover(Options{Root: root, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.java", "real.java"}, fileIDs(files))
}

func TestDiscover_SymlinkCycle(t *testing.T) {
	root := writeTree(t, map[string]string{"dir/a.java": "x"})
	// dir/loop -> dir creates a cycle when symlinks are followed.
	require.NoError(t, os.Symlink(
		filepath.Join(root, "dir"),
		filepath.Join(root, "dir", "loop"),
	))

	files, _, err := Discover(Options{Root: root, Recursive: true, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/a.java"}, fileIDs(files))
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, _, err := Discover(Options{Root: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}

func TestFileIDFor(t *testing.T) {
	root := filepath.FromSlash("/proj")
	assert.Equal(t, "src/Foo.java", FileIDFor(root, filepath.FromSlash("/proj/src/Foo.java")))
	assert.Equal(t, "other.java", FileIDFor(root, filepath.FromSlash("/elsewhere/other.java")))
	assert.Equal(t, "bare.java", FileIDFor("", "bare.java"))
}
