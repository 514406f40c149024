package staging

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/jamesainslie/s3pi/pkg/s3pi/index"
)

// ModifiedSet records the local files created or overwritten during a
// run. Membership is exact: a file appears once no matter how many times
// it was touched.
type ModifiedSet map[string]struct{}

// Add records a path as modified.
func (s ModifiedSet) Add(path string) {
	s[path] = struct{}{}
}

// Has reports whether a path was recorded.
func (s ModifiedSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Paths returns the recorded paths in lexicographic order.
func (s ModifiedSet) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Mutator applies incoming package files to a staging tree, maintaining
// the index pages as it goes.
type Mutator struct {
	fs     afero.Fs
	tree   *Tree
	logger *log.Logger
}

// NewMutator returns a mutator operating on the given tree.
func NewMutator(fsys afero.Fs, tree *Tree, logger *log.Logger) *Mutator {
	return &Mutator{fs: fsys, tree: tree, logger: logger}
}

// Apply copies every regular file in incomingDir into its package
// directory under the staging tree and returns the set of local files
// that were created or overwritten.
//
// For each file: a missing package directory is created and the root
// index regenerated from the full directory listing; the file is copied
// in, overwriting any previous copy; and if the destination did not
// exist before the copy, a link is appended to the package's index page
// (created first when absent). A file that already existed is assumed to
// be linked already, so its index page is left alone.
//
// Filenames present in skip were found to be fully published remotely by
// the planner and are not touched at all.
func (m *Mutator) Apply(incomingDir string, skip map[string]bool) (ModifiedSet, error) {
	entries, err := afero.ReadDir(m.fs, incomingDir)
	if err != nil {
		return nil, fmt.Errorf("listing incoming directory: %w", err)
	}

	modified := make(ModifiedSet)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if skip[name] {
			m.logger.Debug("already published, skipping", "file", name)
			continue
		}
		if err := m.applyFile(incomingDir, name, modified); err != nil {
			return nil, err
		}
	}
	return modified, nil
}

// applyFile places one incoming file and updates the affected pages.
func (m *Mutator) applyFile(incomingDir, name string, modified ModifiedSet) error {
	pkgDir := m.tree.Path(index.PackageKey(name))

	dirExists, err := afero.DirExists(m.fs, pkgDir)
	if err != nil {
		return fmt.Errorf("checking package directory %q: %w", pkgDir, err)
	}
	if !dirExists {
		m.logger.Debug("creating package directory", "path", pkgDir)
		if err := m.fs.MkdirAll(pkgDir, 0o755); err != nil {
			return fmt.Errorf("creating package directory %q: %w", pkgDir, err)
		}
		rootIndex, err := m.regenerateRoot()
		if err != nil {
			return err
		}
		modified.Add(rootIndex)
	}

	dst := filepath.Join(pkgDir, name)
	existedBefore, err := afero.Exists(m.fs, dst)
	if err != nil {
		return fmt.Errorf("checking destination %q: %w", dst, err)
	}

	src := filepath.Join(incomingDir, name)
	m.logger.Info("copying package file", "from", src, "to", pkgDir)
	if err := m.copyFile(src, dst); err != nil {
		return err
	}
	modified.Add(dst)

	if !existedBefore {
		pagePath, err := m.appendPackageLink(pkgDir, name)
		if err != nil {
			return err
		}
		modified.Add(pagePath)
	}
	return nil
}

// regenerateRoot rewrites the root index page from the full listing of
// staging package directories and returns its path. The root page is
// always a full rebuild, never an append.
func (m *Mutator) regenerateRoot() (string, error) {
	names, err := m.tree.PackageDirs()
	if err != nil {
		return "", err
	}

	path := m.tree.Path(index.Filename)
	m.logger.Debug("regenerating root index", "path", path, "packages", len(names))
	if err := afero.WriteFile(m.fs, path, []byte(index.RenderRoot(names)), 0o644); err != nil {
		return "", fmt.Errorf("writing root index: %w", err)
	}
	return path, nil
}

// appendPackageLink appends a link for name to the package page in
// pkgDir, creating the page when absent, and returns the page's path.
func (m *Mutator) appendPackageLink(pkgDir, name string) (string, error) {
	path := filepath.Join(pkgDir, index.Filename)

	existing := ""
	ok, err := afero.Exists(m.fs, path)
	if err != nil {
		return "", fmt.Errorf("checking package index %q: %w", path, err)
	}
	if ok {
		data, err := afero.ReadFile(m.fs, path)
		if err != nil {
			return "", fmt.Errorf("reading package index %q: %w", path, err)
		}
		existing = string(data)
	}

	doc := index.AppendPackageLink(existing, name)
	if err := afero.WriteFile(m.fs, path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing package index %q: %w", path, err)
	}
	return path, nil
}

// copyFile copies src to dst, overwriting dst if present.
func (m *Mutator) copyFile(src, dst string) error {
	in, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	out, err := m.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}
	return out.Close()
}
