package index

import "strings"

// PackageKey derives the package-name key a file is bucketed under: the
// lowercased portion of the filename before the first dash. A filename
// with no dash yields the whole name lowercased.
//
// The same derivation is used everywhere a package is bucketed, locally
// and remotely, so a file always lands in the same directory.
func PackageKey(filename string) string {
	name, _, _ := strings.Cut(filename, "-")
	return strings.ToLower(name)
}
