// Package config defines packaging run settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type names the source root, the units to package, the shared
// directories and manifest files included in every bundle, and the output
// directory for produced archives.
package config
