package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitglue/fnpack/internal/bundle"
	"github.com/fitglue/fnpack/internal/config"
)

// writeTestConfig persists a run configuration and returns its path.
func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fnpack.yaml")
	require.NoError(t, config.Save(path, cfg))

	return path
}

// TestRun_FailFastCleansStaging ensures a failing unit aborts the batch with
// the unit name in the error and leaves no staging tree behind.
func TestRun_FailFastCleansStaging(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "dist")

	// The unit's sources exist, but a configured manifest file does not,
	// so staging starts and then fails on the manifest copy.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "functions", "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "functions", "broken", "b.go"), []byte("package broken\n"), 0o644))

	cfgPath := writeTestConfig(t, &config.Config{
		SourceRoot:    root,
		ManifestFiles: []string{"go.mod"},
		OutputDir:     out,
		Units:         []string{"broken"},
	})

	err := Run(context.Background(), &Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, bundle.ErrCopyFailed)
	require.ErrorContains(t, err, "unit broken")

	// The staging tree never persists past its unit, success or failure.
	_, err = os.Stat(filepath.Join(out, "broken"+stagingSuffix))
	require.ErrorIs(t, err, os.ErrNotExist)

	// The run marker is released on failure too.
	_, err = os.Stat(filepath.Join(out, MarkerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRun_MissingUnitSource surfaces SourceNotFound wrapped with the unit name.
func TestRun_MissingUnitSource(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "functions"), 0o755))

	cfgPath := writeTestConfig(t, &config.Config{
		SourceRoot: root,
		OutputDir:  filepath.Join(t.TempDir(), "dist"),
		Units:      []string{"ghost"},
	})

	err := Run(context.Background(), &Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, bundle.ErrSourceNotFound)
	require.ErrorContains(t, err, "unit ghost")
}

// TestRun_ReplacesStaleArtifacts ensures leftovers from a crashed prior run
// (staging directory and garbage archive) are cleared before packaging.
func TestRun_ReplacesStaleArtifacts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "dist")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "functions", "router"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "functions", "router", "a.go"), []byte("package router\n"), 0o644))

	// Leftover state from a crashed run.
	require.NoError(t, os.MkdirAll(filepath.Join(out, "router"+stagingSuffix, "junk"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "router"+bundle.ArchiveExtension), []byte("not a zip"), 0o644))

	cfgPath := writeTestConfig(t, &config.Config{
		SourceRoot: root,
		OutputDir:  out,
		Units:      []string{"router"},
	})

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: cfgPath}))

	// The garbage archive was replaced by a valid, fingerprintable one.
	checksum, err := bundle.Fingerprint(filepath.Join(out, "router"+bundle.ArchiveExtension))
	require.NoError(t, err)
	require.NotEmpty(t, checksum)

	_, err = os.Stat(filepath.Join(out, "router"+stagingSuffix))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRun_CancelledContext stops before packaging any unit.
func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "functions", "router"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "functions", "router", "a.go"), []byte("package router\n"), 0o644))

	out := filepath.Join(t.TempDir(), "dist")

	cfgPath := writeTestConfig(t, &config.Config{
		SourceRoot: root,
		OutputDir:  out,
		Units:      []string{"router"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, &Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, context.Canceled)

	_, err = os.Stat(filepath.Join(out, "router"+bundle.ArchiveExtension))
	require.ErrorIs(t, err, os.ErrNotExist)
}
