// Package bundle implements the deterministic packaging core: the inclusion
// filter deciding which files ship, the stager merging a unit's private and
// shared sources into a temporary tree, and the archive writer serializing
// that tree into a byte-reproducible zip.
//
// Reproducibility is the package's contract: for a fixed staging tree content
// set, the produced archive is byte-for-byte identical across machines, runs
// and time. Entry order is fixed by explicit sorts at every directory level
// and entry timestamps are pinned to the zip epoch, so archive checksums can
// serve as deployment fingerprints.
package bundle
