// Package config loads s3pi settings from INI config files.
//
// Files are consulted in order: /etc/s3pi/config, the user config under
// $XDG_CONFIG_HOME/s3pi/config, then any explicitly given path; later
// files override earlier ones and missing files are skipped. Within a
// file, the [default] section is used when present; otherwise the first
// named section stands in for it, so a config written under a profile
// name still loads.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/ini.v1"
)

// Settings are the recognized configuration options.
type Settings struct {
	// Bucket is the S3 bucket holding the index (option "s3.bucket").
	Bucket string

	// Prefix is the key prefix of the index tree (option "s3.prefix").
	Prefix string

	// Upload enables remote sync without the CLI flag (option "upload").
	Upload bool

	// Region is the S3 region (option "region").
	Region string

	// Strategy selects the sync strategy (option "strategy").
	Strategy string

	// StrictRemote makes an unreachable remote fatal (option
	// "strict_remote").
	StrictRemote bool
}

// Default returns settings with every option at its default.
func Default() *Settings {
	return &Settings{
		Bucket:       DefaultBucket,
		Prefix:       DefaultPrefix,
		Upload:       DefaultUpload,
		Region:       DefaultRegion,
		Strategy:     DefaultStrategy,
		StrictRemote: DefaultStrictRemote,
	}
}

// DefaultPath returns the user config file path.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "s3pi", "config")
}

// Load reads settings from the standard search path plus an optional
// explicit file.
func Load(explicit string) (*Settings, error) {
	paths := []string{systemPath, DefaultPath()}
	if explicit != "" {
		paths = append(paths, explicit)
	}
	return loadFrom(paths...)
}

// loadFrom merges the given files, later paths overriding earlier ones.
func loadFrom(paths ...string) (*Settings, error) {
	others := make([]interface{}, len(paths)-1)
	for i, p := range paths[1:] {
		others[i] = p
	}
	f, err := ini.LooseLoad(paths[0], others...)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	s := Default()
	sec := pickSection(f)
	s.Bucket = sec.Key("s3.bucket").MustString(s.Bucket)
	s.Prefix = sec.Key("s3.prefix").MustString(s.Prefix)
	s.Upload = sec.Key("upload").MustBool(s.Upload)
	s.Region = sec.Key("region").MustString(s.Region)
	s.Strategy = sec.Key("strategy").MustString(s.Strategy)
	s.StrictRemote = sec.Key("strict_remote").MustBool(s.StrictRemote)
	return s, nil
}

// pickSection returns the [default] section when present, else the first
// named section, else the sectionless keys.
func pickSection(f *ini.File) *ini.Section {
	if sec, err := f.GetSection("default"); err == nil {
		return sec
	}
	for _, name := range f.SectionStrings() {
		if name != ini.DefaultSection {
			return f.Section(name)
		}
	}
	return f.Section(ini.DefaultSection)
}
