package bundle

// Unit describes one independently deployable function and its packaging inputs.
// Units are built from configuration before a run starts and are not mutated.
type Unit struct {
	// Name identifies the unit within a run and names its staging
	// subdirectory and archive file.
	Name string
	// SourceDir is the unit's private source root. It must exist.
	SourceDir string
	// SharedDirs are source roots shared by every unit.
	// A shared root missing on disk is skipped.
	SharedDirs []string
	// ManifestFiles are root-level files copied verbatim into the
	// staging tree's top level, keeping their base names.
	ManifestFiles []string
}

// PackageResult records the artifact produced for one unit.
type PackageResult struct {
	// UnitName is the packaged unit.
	UnitName string
	// ArchivePath is the absolute path of the produced archive.
	ArchivePath string
	// Checksum is the base64-encoded SHA-512 fingerprint of the archive bytes.
	Checksum string
}
