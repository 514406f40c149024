// Package sync drives one synchronization run: plan, download, mutate,
// upload, in that order, with the staging tree released on every exit
// path.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/jamesainslie/s3pi/pkg/s3pi/index"
	"github.com/jamesainslie/s3pi/pkg/s3pi/planner"
	"github.com/jamesainslie/s3pi/pkg/s3pi/remote"
	"github.com/jamesainslie/s3pi/pkg/s3pi/staging"
)

// Options configures a run.
type Options struct {
	// IncomingDir holds the package files to add to the index.
	IncomingDir string

	// Upload enables remote synchronization. Without it the run only
	// maintains the index locally.
	Upload bool

	// Prefix is the object key prefix the index tree lives under.
	Prefix string

	// Strategy selects full-clone or minimal-incremental planning.
	Strategy planner.Strategy

	// StrictRemote makes an unreachable remote fatal instead of
	// degrading to a local-only run.
	StrictRemote bool
}

// Runner executes synchronization runs. Each run is independent: no
// state is shared between invocations.
type Runner struct {
	fs     afero.Fs
	store  remote.Store
	opts   Options
	logger *log.Logger
}

// NewRunner returns a runner. store may be nil when remote
// synchronization is disabled.
func NewRunner(fsys afero.Fs, store remote.Store, opts Options, logger *log.Logger) *Runner {
	return &Runner{fs: fsys, store: store, opts: opts, logger: logger}
}

// Run performs one synchronization run.
func (r *Runner) Run(ctx context.Context) (err error) {
	incoming, err := r.listIncoming()
	if err != nil {
		return err
	}

	tree, err := staging.NewTree(r.fs, r.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tree.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	logger := r.logger.With("run", tree.ID())
	prefix := remote.EnsureTrailingSlash(r.opts.Prefix)

	upload := r.opts.Upload && r.store != nil
	var plan *planner.Plan
	if upload {
		plan, err = r.plan(ctx, prefix, incoming, logger)
		if err != nil {
			if errors.Is(err, remote.ErrUnavailable) && !r.opts.StrictRemote {
				logger.Error("remote unavailable, maintaining index locally only", "error", err)
				upload, plan = false, nil
			} else {
				return err
			}
		}
	}

	if plan != nil && len(plan.Downloads) > 0 {
		if err := r.download(ctx, prefix, plan, tree, logger); err != nil {
			return err
		}
	}

	var skip map[string]bool
	if plan != nil {
		skip = plan.Published
	}
	mutator := staging.NewMutator(r.fs, tree, logger)
	modified, err := mutator.Apply(r.opts.IncomingDir, skip)
	if err != nil {
		return err
	}
	logger.Info("index updated", "modified", len(modified))

	if upload {
		return r.upload(ctx, prefix, tree, modified, logger)
	}
	return nil
}

// listIncoming enumerates the regular files in the incoming directory.
// A missing or unreadable directory aborts the run before any remote
// traffic.
func (r *Runner) listIncoming() ([]string, error) {
	ok, err := afero.DirExists(r.fs, r.opts.IncomingDir)
	if err != nil {
		return nil, fmt.Errorf("checking incoming directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("incoming directory %q does not exist", r.opts.IncomingDir)
	}

	entries, err := afero.ReadDir(r.fs, r.opts.IncomingDir)
	if err != nil {
		return nil, fmt.Errorf("listing incoming directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (r *Runner) plan(ctx context.Context, prefix string, incoming []string, logger *log.Logger) (*planner.Plan, error) {
	p := planner.New(r.store, prefix, r.opts.Strategy, logger)
	plan, err := p.Plan(ctx, incoming)
	if err != nil {
		return nil, err
	}
	if plan.FullRebuild {
		logger.Info("remote index uninitialised, rebuilding from scratch")
	}
	return plan, nil
}

// download fetches the planned objects into the staging tree. When the
// root index was among them, the package-directory skeleton is rebuilt
// from its links so directory checks agree with remote reality.
func (r *Runner) download(ctx context.Context, prefix string, plan *planner.Plan, tree *staging.Tree, logger *log.Logger) error {
	logger.Info("downloading index pages", "count", len(plan.Downloads))
	for _, rel := range plan.Downloads {
		if err := r.store.Download(ctx, prefix+rel, tree.Path(rel)); err != nil {
			return err
		}
	}
	if plan.HasDownload(index.Filename) {
		if err := tree.RebuildRootFolders(); err != nil {
			return err
		}
	}
	return nil
}

// upload pushes exactly the modified files back under the prefix.
func (r *Runner) upload(ctx context.Context, prefix string, tree *staging.Tree, modified staging.ModifiedSet, logger *log.Logger) error {
	for _, path := range modified.Paths() {
		rel, err := tree.Rel(path)
		if err != nil {
			return err
		}
		key := prefix + rel

		info, err := r.fs.Stat(path)
		if err != nil {
			return fmt.Errorf("stating %q: %w", path, err)
		}
		if err := r.store.Upload(ctx, path, key); err != nil {
			return err
		}
		logger.Info("uploaded", "key", key, "size", humanize.Bytes(uint64(info.Size())))
	}
	return nil
}
