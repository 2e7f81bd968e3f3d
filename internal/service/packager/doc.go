// Package packager orchestrates a packaging batch: for every configured
// unit it clears stale state, stages the unit's file set, serializes the
// staging tree into a reproducible zip and removes the staging tree again,
// failing fast on the first broken unit.
//
// A successful batch ends with a YAML bundle manifest in the output
// directory mapping unit names to archive files and SHA-512 fingerprints.
// A marker file guards the output directory against concurrent runs.
package packager
