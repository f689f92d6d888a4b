// Package discovery finds input files for the CLI: a root-directory walk
// with doublestar include/exclude globs, optional symlink following, and a
// file-size ceiling. Results come back sorted by file_id so downstream
// runs are order-independent from the start.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jward/codeindex/internal/model"
)

// Options controls a discovery walk.
type Options struct {
	Root             string
	Recursive        bool
	IncludeGlobs     []string // match against file_id; empty means all
	ExcludeGlobs     []string
	FollowSymlinks   bool
	MaxFileSizeBytes int64 // 0 means unlimited
}

// File is one discovered input: the path to read and its root-relative,
// slash-normalised file_id.
type File struct {
	Path   string
	FileID string
}

// FileIDFor derives the stable file_id for path: root-relative with '/'
// separators when path is under root, otherwise the basename.
func FileIDFor(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(path)
}

// Discover walks opts.Root and returns matching files sorted by file_id.
// Oversized files are skipped with an io.too_large diagnostic. Unreadable
// directories, the root included, are skipped with an io.read diagnostic;
// only a root that cannot be stat'ed or is not a directory is a hard error.
func Discover(opts Options) ([]File, []model.Diagnostic, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root %s: not a directory", root)
	}

	w := &walker{opts: opts, root: root, visited: make(map[string]struct{})}
	if err := w.walkDir(root); err != nil {
		return nil, nil, err
	}

	sort.Slice(w.files, func(i, j int) bool { return w.files[i].FileID < w.files[j].FileID })
	return w.files, w.diags, nil
}

type walker struct {
	opts    Options
	root    string
	files   []File
	diags   []model.Diagnostic
	visited map[string]struct{} // resolved dirs, guards symlink cycles
}

func (w *walker) walkDir(dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		if _, seen := w.visited[resolved]; seen {
			return nil
		}
		w.visited[resolved] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.diags = append(w.diags, model.Diagnostic{
			Severity: model.SeverityError,
			FileID:   FileIDFor(w.root, dir),
			Message:  fmt.Sprintf("cannot read directory: %v", err),
			Code:     model.CodeIORead,
		})
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if !w.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				continue // dangling symlink
			}
			isDir = target.IsDir()
		}

		if isDir {
			if w.opts.Recursive {
				if err := w.walkDir(path); err != nil {
					return err
				}
			}
			continue
		}

		fileID := FileIDFor(w.root, path)
		if !w.matches(fileID) {
			continue
		}

		if w.opts.MaxFileSizeBytes > 0 {
			if info, err := os.Stat(path); err == nil && info.Size() > w.opts.MaxFileSizeBytes {
				w.diags = append(w.diags, model.Diagnostic{
					Severity: model.SeverityWarning,
					FileID:   fileID,
					Message:  fmt.Sprintf("file exceeds size limit (%d > %d bytes)", info.Size(), w.opts.MaxFileSizeBytes),
					Code:     model.CodeIOTooLarge,
				})
				continue
			}
		}

		w.files = append(w.files, File{Path: path, FileID: fileID})
	}
	return nil
}

// matches applies include globs (empty set admits everything) then
// exclude globs, both against the slash-normalised file_id.
func (w *walker) matches(fileID string) bool {
	if len(w.opts.IncludeGlobs) > 0 {
		included := false
		for _, g := range w.opts.IncludeGlobs {
			if ok, err := doublestar.Match(g, fileID); err == nil && ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, g := range w.opts.ExcludeGlobs {
		if ok, err := doublestar.Match(g, fileID); err == nil && ok {
			return false
		}
	}
	return true
}
