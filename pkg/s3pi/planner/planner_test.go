package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/s3pi/pkg/s3pi/logging"
	"github.com/jamesainslie/s3pi/pkg/s3pi/remote"
)

// fakeStore serves existence and listing queries from a set of keys and
// counts the round trips made.
type fakeStore struct {
	keys        map[string]bool
	existsCalls []string
	listCalls   int
	err         error
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.existsCalls = append(f.existsCalls, key)
	return f.keys[key], nil
}

func (f *fakeStore) List(_ context.Context, prefix string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.listCalls++
	var out []string
	for k, present := range f.keys {
		if present && strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeStore) Download(_ context.Context, _, _ string) error { return nil }
func (f *fakeStore) Upload(_ context.Context, _, _ string) error   { return nil }

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("incremental")
	require.NoError(t, err)
	assert.Equal(t, StrategyIncremental, s)

	s, err = ParseStrategy("Full")
	require.NoError(t, err)
	assert.Equal(t, StrategyFull, s)

	_, err = ParseStrategy("bogus")
	assert.Error(t, err)
}

func TestPrefixNormalized(t *testing.T) {
	p := New(&fakeStore{}, "simple", StrategyIncremental, logging.Discard())
	assert.Equal(t, "simple/", p.Prefix())
}

func TestUninitializedRemoteSignalsFullRebuild(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{}}
	p := New(store, "simple/", StrategyIncremental, logging.Discard())

	plan, err := p.Plan(context.Background(), []string{"foo-1.0.whl", "bar-2.0.whl"})
	require.NoError(t, err)

	assert.True(t, plan.FullRebuild)
	assert.Empty(t, plan.Downloads)
	assert.Equal(t, []string{"simple/index.html"}, store.existsCalls,
		"no per-package checks after the sentinel fires")
}

func TestKnownPackageMissingFile(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{
		"simple/index.html":     true,
		"simple/bar/index.html": true,
	}}
	p := New(store, "simple", StrategyIncremental, logging.Discard())

	plan, err := p.Plan(context.Background(), []string{"bar-2.0.whl"})
	require.NoError(t, err)

	assert.False(t, plan.FullRebuild)
	assert.False(t, plan.RootStale)
	assert.Equal(t, []string{"bar/index.html"}, plan.Downloads,
		"exactly one download and no root-index download")
	assert.Empty(t, plan.Published)
}

func TestNewPackageSchedulesRootDownload(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{
		"simple/index.html": true,
	}}
	p := New(store, "simple", StrategyIncremental, logging.Discard())

	plan, err := p.Plan(context.Background(), []string{"foo-1.0.whl"})
	require.NoError(t, err)

	assert.True(t, plan.RootStale)
	assert.Equal(t, []string{"index.html"}, plan.Downloads,
		"the package page is created locally, not fetched")
}

func TestPublishedFileNeedsNothing(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{
		"simple/index.html":        true,
		"simple/foo/index.html":    true,
		"simple/foo/foo-1.0.whl":   true,
		"simple/foo/foo-1.1.whl":   false,
		"simple/misc/anything.txt": false,
	}}
	p := New(store, "simple", StrategyIncremental, logging.Discard())

	plan, err := p.Plan(context.Background(), []string{"foo-1.0.whl"})
	require.NoError(t, err)

	assert.Empty(t, plan.Downloads)
	assert.True(t, plan.Published["foo-1.0.whl"])
}

func TestPageExistenceCheckedOncePerKey(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{
		"simple/index.html":     true,
		"simple/foo/index.html": true,
	}}
	p := New(store, "simple", StrategyIncremental, logging.Discard())

	_, err := p.Plan(context.Background(), []string{"foo-1.0.whl", "foo-1.1.whl", "foo-2.0.whl"})
	require.NoError(t, err)

	pageChecks := 0
	for _, key := range store.existsCalls {
		if key == "simple/foo/index.html" {
			pageChecks++
		}
	}
	assert.Equal(t, 1, pageChecks, "per-key existence results are cached within a run")
}

func TestNoDashFilenameDoesNotPanic(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{
		"simple/index.html": true,
	}}
	p := New(store, "simple", StrategyIncremental, logging.Discard())

	plan, err := p.Plan(context.Background(), []string{"NoDashName"})
	require.NoError(t, err)

	assert.Contains(t, store.existsCalls, "simple/nodashname/index.html")
	assert.True(t, plan.RootStale)
}

func TestRemoteErrorPropagates(t *testing.T) {
	store := &fakeStore{err: remote.ErrUnavailable}
	p := New(store, "simple", StrategyIncremental, logging.Discard())

	_, err := p.Plan(context.Background(), []string{"foo-1.0.whl"})
	assert.ErrorIs(t, err, remote.ErrUnavailable)
}

func TestFullStrategyClonesEverything(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{
		"simple/index.html":      true,
		"simple/foo/index.html":  true,
		"simple/foo/foo-1.0.whl": true,
	}}
	p := New(store, "simple", StrategyFull, logging.Discard())

	plan, err := p.Plan(context.Background(), []string{"bar-2.0.whl"})
	require.NoError(t, err)

	assert.False(t, plan.FullRebuild)
	assert.Equal(t, []string{"foo/foo-1.0.whl", "foo/index.html", "index.html"}, plan.Downloads)
	assert.Equal(t, 1, store.listCalls, "one listing round trip, no existence checks")
	assert.Empty(t, store.existsCalls)
}

func TestFullStrategyEmptyRemote(t *testing.T) {
	store := &fakeStore{keys: map[string]bool{}}
	p := New(store, "simple", StrategyFull, logging.Discard())

	plan, err := p.Plan(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, plan.FullRebuild)
}

func TestHasDownload(t *testing.T) {
	plan := &Plan{Downloads: []string{"index.html", "foo/index.html"}}
	assert.True(t, plan.HasDownload("index.html"))
	assert.False(t, plan.HasDownload("bar/index.html"))
}
