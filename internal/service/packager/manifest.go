package packager

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fitglue/fnpack/internal/logger"
	"github.com/fitglue/fnpack/internal/version"
)

const (
	// ManifestFilename names the bundle manifest written next to the archives.
	ManifestFilename = "fnpack-bundles.yaml"

	// manifestFileMode is used when producing artifacts for distribution.
	manifestFileMode os.FileMode = 0o644
)

// Manifest summarizes the archives produced by one packaging batch.
// Deployment tooling compares checksums against the previously deployed
// manifest to skip units whose archives did not change.
type Manifest struct {
	// VersionNumber is the fnpack release that produced the batch.
	VersionNumber string `yaml:"version"`
	// Bundles maps unit names to their produced archives.
	Bundles map[string]ManifestBundle `yaml:"bundles"`
}

// ManifestBundle describes one unit's archive.
type ManifestBundle struct {
	// Archive is the archive filename within the output directory.
	Archive string `yaml:"archive"`
	// Checksum is the base64-encoded SHA-512 fingerprint of the archive bytes.
	Checksum string `yaml:"checksum"`
}

// NewManifest produces a Manifest initialized with the current tool version.
func NewManifest() *Manifest {
	return &Manifest{
		VersionNumber: version.Short(),
		Bundles:       make(map[string]ManifestBundle),
	}
}

// saveManifest writes the bundle manifest for the accumulated results and
// logs where the artifacts ended up.
func (r *runner) saveManifest(ctx context.Context) error {
	manifest := NewManifest()

	for _, result := range r.results {
		manifest.Bundles[result.UnitName] = ManifestBundle{
			Archive:  filepath.Base(result.ArchivePath),
			Checksum: result.Checksum,
		}
	}

	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(r.cfg.OutputDir, ManifestFilename)
	if err = os.WriteFile(manifestPath, contents, manifestFileMode); err != nil {
		return err
	}

	r.printNextSteps(ctx, manifestPath)

	return nil
}

// printNextSteps logs human-readable guidance for the created artifacts.
func (r *runner) printNextSteps(ctx context.Context, manifestPath string) {
	files := make([]string, 0, len(r.results)+1)
	for _, result := range r.results {
		files = append(files, result.ArchivePath)
	}

	files = append(files, manifestPath)
	sort.Strings(files)

	var builder strings.Builder

	builder.WriteString("Upload the following files to the deployment platform:\n")

	for i, name := range files {
		if i == 0 {
			builder.WriteString(name)
		} else {
			builder.WriteString(",\n")
			builder.WriteString(name)
		}
	}

	logger.Info(ctx, builder.String())
}
