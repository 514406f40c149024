// Package staging owns the temporary local mirror of the package index
// used during one synchronization run, and the mutator that applies
// incoming package files to it.
package staging

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jamesainslie/s3pi/pkg/s3pi/index"
)

// Tree is the staging mirror for a single run. It is created fresh,
// exclusively owned by the run, and removed on Close regardless of how
// the run ended.
type Tree struct {
	fs     afero.Fs
	root   string
	id     string
	logger *log.Logger
}

// NewTree creates a fresh staging directory under the filesystem's
// temporary area.
func NewTree(fsys afero.Fs, logger *log.Logger) (*Tree, error) {
	id := uuid.NewString()
	root := filepath.Join(afero.GetTempDir(fsys, ""), "s3pi-"+id)
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	logger.Debug("created staging directory", "path", root)
	return &Tree{fs: fsys, root: root, id: id, logger: logger}, nil
}

// Root returns the absolute path of the staging directory.
func (t *Tree) Root() string {
	return t.root
}

// ID returns the run identifier the staging directory was created under.
func (t *Tree) ID() string {
	return t.id
}

// Path resolves a path relative to the staging root.
func (t *Tree) Path(rel string) string {
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

// Rel maps an absolute staging path back to its slash-separated relative
// form, the shape used for remote object keys.
func (t *Tree) Rel(path string) (string, error) {
	rel, err := filepath.Rel(t.root, path)
	if err != nil {
		return "", fmt.Errorf("path %q is outside the staging tree: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

// Close removes the staging directory and everything beneath it. It runs
// on every exit path, including early failure.
func (t *Tree) Close() error {
	t.logger.Debug("removing staging directory", "path", t.root)
	return t.fs.RemoveAll(t.root)
}

// RebuildRootFolders recreates the package-directory skeleton from the
// root index document already present in the tree. After a root index
// download this makes local directory-existence checks agree with what
// the remote index actually lists.
func (t *Tree) RebuildRootFolders() error {
	doc, err := afero.ReadFile(t.fs, t.Path(index.Filename))
	if err != nil {
		return fmt.Errorf("reading root index: %w", err)
	}

	for _, name := range index.ListLinkedNames(string(doc)) {
		dir := t.Path(name)
		t.logger.Debug("recreating package directory", "path", dir)
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("recreating package directory %q: %w", dir, err)
		}
	}
	return nil
}

// PackageDirs lists the package directories currently present at the
// staging root, in lexicographic order.
func (t *Tree) PackageDirs() ([]string, error) {
	entries, err := afero.ReadDir(t.fs, t.root)
	if err != nil {
		return nil, fmt.Errorf("listing staging root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
