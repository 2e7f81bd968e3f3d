package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fitglue/fnpack/internal/bundle"
	"github.com/fitglue/fnpack/internal/config"
	"github.com/fitglue/fnpack/internal/logger"
)

// Options contains inputs for the fnpack entry point.
type Options struct {
	// ConfigPath is the path to the packaging settings YAML (defaults to fnpack.yaml).
	ConfigPath string
	// OutputDir overrides the configured archive output directory when non-empty.
	OutputDir string
}

// runner holds the resolved configuration and accumulates results for one batch.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type runner struct {
	// cfg is the validated run configuration.
	cfg *config.Config
	// results collects one PackageResult per successfully packaged unit.
	results []bundle.PackageResult
}

// stagingSuffix names the per-unit staging directory next to the archives.
// Embedding the unit name keeps staging paths disjoint across units.
const stagingSuffix = "_staging"

// Run executes the packaging workflow for every configured unit.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "fnpack")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	if err = os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	release, err := acquireRunMarker(ctx, cfg.OutputDir)
	if err != nil {
		return err
	}
	defer release(ctx)

	r := &runner{cfg: cfg}

	if err = r.Run(ctx); err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	logger.InfoKV(ctx, "Packaging completed", "units", len(r.results), "output", cfg.OutputDir)

	return nil
}

// Run packages every configured unit sequentially, failing fast on the first
// broken one, then writes the bundle manifest.
func (r *runner) Run(ctx context.Context) error {
	for _, name := range r.cfg.Units {
		// Cancellation is honored between units, never mid-unit: a started
		// unit always finishes its cleanup before control returns.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := r.packageUnit(ctx, name)
		if err != nil {
			return fmt.Errorf("unit %s: %w", name, err)
		}

		r.results = append(r.results, *result)
	}

	return r.saveManifest(ctx)
}

// packageUnit stages, archives and fingerprints a single unit. The staging
// tree never outlives the call, on success or failure.
func (r *runner) packageUnit(ctx context.Context, name string) (*bundle.PackageResult, error) {
	var (
		unit    = r.unit(name)
		staging = filepath.Join(r.cfg.OutputDir, name+stagingSuffix)
		archive = filepath.Join(r.cfg.OutputDir, name+bundle.ArchiveExtension)
	)

	logger.InfoKV(ctx, "Packaging unit", "unit", name)

	// Clear stale state from a crashed prior run.
	if err := os.RemoveAll(staging); err != nil {
		return nil, fmt.Errorf("remove stale staging directory: %w", err)
	}

	if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale archive: %w", err)
	}

	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.WarnKV(ctx, "Unable to remove staging directory", "path", staging, "error", err)
		}
	}()

	if err := bundle.Stage(unit, staging); err != nil {
		return nil, err
	}

	if err := bundle.WriteArchive(staging, archive); err != nil {
		return nil, err
	}

	checksum, err := bundle.Fingerprint(archive)
	if err != nil {
		return nil, err
	}

	absolute, err := filepath.Abs(archive)
	if err != nil {
		return nil, fmt.Errorf("resolve archive path: %w", err)
	}

	logger.InfoKV(ctx, "Packaged unit", "unit", name, "archive", absolute)

	return &bundle.PackageResult{
		UnitName:    name,
		ArchivePath: absolute,
		Checksum:    checksum,
	}, nil
}

// unit resolves a configured unit name into packaging inputs, anchoring
// shared roots and manifest files at the source root.
func (r *runner) unit(name string) *bundle.Unit {
	shared := make([]string, 0, len(r.cfg.SharedDirs))
	for _, dir := range r.cfg.SharedDirs {
		shared = append(shared, filepath.Join(r.cfg.SourceRoot, dir))
	}

	manifests := make([]string, 0, len(r.cfg.ManifestFiles))
	for _, file := range r.cfg.ManifestFiles {
		manifests = append(manifests, filepath.Join(r.cfg.SourceRoot, file))
	}

	return &bundle.Unit{
		Name:          name,
		SourceDir:     filepath.Join(r.cfg.SourceRoot, r.cfg.FunctionsDir, name),
		SharedDirs:    shared,
		ManifestFiles: manifests,
	}
}
