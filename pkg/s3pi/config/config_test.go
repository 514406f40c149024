package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultSection(t *testing.T) {
	path := writeConfig(t, `[default]
s3.bucket = packages
s3.prefix = wheels
upload = true
`)

	s, err := loadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "packages", s.Bucket)
	assert.Equal(t, "wheels", s.Prefix)
	assert.True(t, s.Upload)
}

func TestLoadOtherSectionFallsBack(t *testing.T) {
	path := writeConfig(t, `[production]
s3.bucket = prod-packages
upload = true
`)

	s, err := loadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "prod-packages", s.Bucket,
		"a named section stands in for the missing default section")
	assert.True(t, s.Upload)
	assert.Equal(t, DefaultPrefix, s.Prefix, "unset options keep defaults")
}

func TestLoadDefaultSectionPreferred(t *testing.T) {
	path := writeConfig(t, `[other]
s3.bucket = wrong
[default]
s3.bucket = right
`)

	s, err := loadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "right", s.Bucket)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	s, err := loadFrom(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)

	assert.Equal(t, Default(), s)
	assert.Equal(t, "", s.Bucket)
	assert.Equal(t, "simple", s.Prefix)
	assert.False(t, s.Upload)
	assert.Equal(t, "us-east-1", s.Region)
	assert.Equal(t, "incremental", s.Strategy)
	assert.False(t, s.StrictRemote)
}

func TestLoadLaterFilesOverride(t *testing.T) {
	base := writeConfig(t, `[default]
s3.bucket = base
s3.prefix = wheels
`)
	override := writeConfig(t, `[default]
s3.bucket = override
`)

	s, err := loadFrom(base, override)
	require.NoError(t, err)

	assert.Equal(t, "override", s.Bucket)
	assert.Equal(t, "wheels", s.Prefix, "options absent from later files survive")
}

func TestLoadSectionlessKeys(t *testing.T) {
	path := writeConfig(t, "s3.bucket = bare\n")

	s, err := loadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "bare", s.Bucket)
}

func TestLoadExtraOptions(t *testing.T) {
	path := writeConfig(t, `[default]
region = eu-west-1
strategy = full
strict_remote = true
`)

	s, err := loadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", s.Region)
	assert.Equal(t, "full", s.Strategy)
	assert.True(t, s.StrictRemote)
}
