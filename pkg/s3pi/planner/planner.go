// Package planner decides which remote index objects must be fetched
// before a local change can be applied, keeping remote round trips to a
// minimum.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jamesainslie/s3pi/pkg/s3pi/index"
	"github.com/jamesainslie/s3pi/pkg/s3pi/remote"
)

// Strategy selects how the remote state is reconciled before mutation.
type Strategy string

const (
	// StrategyIncremental probes the remote per package and fetches
	// only the index pages the change actually touches.
	StrategyIncremental Strategy = "incremental"

	// StrategyFull clones the whole remote tree before mutation.
	// Always safe; cost scales with the remote index, not the change.
	StrategyFull Strategy = "full"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyIncremental:
		return StrategyIncremental, nil
	case StrategyFull:
		return StrategyFull, nil
	default:
		return "", fmt.Errorf("unknown sync strategy %q", s)
	}
}

// Plan is the set of remote objects to fetch before mutation, plus what
// the planner learned while probing.
type Plan struct {
	// FullRebuild is the sentinel for an uninitialized remote index:
	// nothing exists remotely, so everything is created from scratch
	// locally and no downloads are needed.
	FullRebuild bool

	// Downloads are the object paths (relative to the prefix) to fetch
	// into the staging tree, sorted and deduplicated.
	Downloads []string

	// RootStale marks that the root index must be regenerated because
	// at least one incoming file introduces a new package.
	RootStale bool

	// Published holds incoming filenames that already exist remotely
	// in full; they need no fetch and no local mutation.
	Published map[string]bool
}

// HasDownload reports whether rel is scheduled for download.
func (p *Plan) HasDownload(rel string) bool {
	for _, d := range p.Downloads {
		if d == rel {
			return true
		}
	}
	return false
}

// Planner computes sync plans against a remote store.
type Planner struct {
	store    remote.Store
	prefix   string
	strategy Strategy
	logger   *log.Logger
}

// New returns a planner for the index tree under prefix. The prefix is
// normalized to end in exactly one slash.
func New(store remote.Store, prefix string, strategy Strategy, logger *log.Logger) *Planner {
	return &Planner{
		store:    store,
		prefix:   remote.EnsureTrailingSlash(prefix),
		strategy: strategy,
		logger:   logger,
	}
}

// Prefix returns the normalized key prefix the planner operates under.
func (p *Planner) Prefix() string {
	return p.prefix
}

// Plan computes the downloads required before the incoming filenames can
// be applied locally.
func (p *Planner) Plan(ctx context.Context, incoming []string) (*Plan, error) {
	if p.strategy == StrategyFull {
		return p.planFull(ctx)
	}
	return p.planIncremental(ctx, incoming)
}

// planIncremental probes the remote per package-name key. At most one
// page-existence check is made per key, however many incoming files
// share it.
func (p *Planner) planIncremental(ctx context.Context, incoming []string) (*Plan, error) {
	rootExists, err := p.store.Exists(ctx, p.prefix+index.Filename)
	if err != nil {
		return nil, err
	}
	if !rootExists {
		p.logger.Debug("remote index is not initialised", "prefix", p.prefix)
		return &Plan{FullRebuild: true, Published: map[string]bool{}}, nil
	}

	plan := &Plan{Published: map[string]bool{}}
	downloads := map[string]struct{}{}
	pageExists := map[string]bool{} // one existence check per package key

	for _, name := range incoming {
		key := index.PackageKey(name)

		exists, checked := pageExists[key]
		if !checked {
			exists, err = p.store.Exists(ctx, p.prefix+key+"/"+index.Filename)
			if err != nil {
				return nil, err
			}
			pageExists[key] = exists
		}

		if !exists {
			// Never-seen package: the root index gains a link, and the
			// package page is created fresh locally rather than fetched.
			p.logger.Debug("package not in remote index", "package", key)
			plan.RootStale = true
			downloads[index.Filename] = struct{}{}
			continue
		}

		fileExists, err := p.store.Exists(ctx, p.prefix+key+"/"+name)
		if err != nil {
			return nil, err
		}
		if fileExists {
			plan.Published[name] = true
			continue
		}

		// The page exists remotely but lacks this file: fetch it so the
		// local append lands on top of the true remote content.
		downloads[key+"/"+index.Filename] = struct{}{}
	}

	plan.Downloads = sortedKeys(downloads)
	return plan, nil
}

// planFull schedules a clone of every remote object under the prefix.
// An empty remote collapses to the full-rebuild sentinel.
func (p *Planner) planFull(ctx context.Context) (*Plan, error) {
	keys, err := p.store.List(ctx, p.prefix)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		p.logger.Debug("remote index is empty", "prefix", p.prefix)
		return &Plan{FullRebuild: true, Published: map[string]bool{}}, nil
	}

	downloads := map[string]struct{}{}
	for _, key := range keys {
		downloads[strings.TrimPrefix(key, p.prefix)] = struct{}{}
	}

	return &Plan{Downloads: sortedKeys(downloads), Published: map[string]bool{}}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
