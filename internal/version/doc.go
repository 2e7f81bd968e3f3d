// Package version exposes build metadata injected via ldflags and a helper
// to attach a `version` subcommand to cobra roots. The tool version is also
// recorded in every bundle manifest so deployments can be traced back to the
// packager release that produced them.
package version
