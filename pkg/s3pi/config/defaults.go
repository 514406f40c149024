package config

// Defaults applied when neither a config file nor flags provide a value.
const (
	// DefaultBucket is empty: uploading requires a configured bucket.
	DefaultBucket = ""

	// DefaultPrefix is the key prefix the index tree lives under.
	DefaultPrefix = "simple"

	// DefaultUpload leaves remote synchronization off unless asked for.
	DefaultUpload = false

	// DefaultRegion is used when neither config nor environment name one.
	DefaultRegion = "us-east-1"

	// DefaultStrategy is the minimal-incremental sync strategy.
	DefaultStrategy = "incremental"

	// DefaultStrictRemote degrades to local-only maintenance when the
	// remote is unreachable instead of failing the run.
	DefaultStrictRemote = false
)

// systemPath is consulted before the user config file.
const systemPath = "/etc/s3pi/config"
