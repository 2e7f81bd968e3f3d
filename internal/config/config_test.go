package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, name rules and defaulting.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing source root.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// No units.
	cfg = &Config{
		SourceRoot: "src/go",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Unit name with a path separator.
	cfg = &Config{
		SourceRoot: "src/go",
		Units:      []string{"../escape"},
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Duplicate unit.
	cfg = &Config{
		SourceRoot: "src/go",
		Units:      []string{"router", "router"},
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay, defaults filled in.
	cfg = &Config{
		SourceRoot: "src/go",
		Units:      []string{"router", "enricher"},
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultFunctionsDir, cfg.FunctionsDir)
	require.Equal(t, []string{DefaultSharedDir}, cfg.SharedDirs)
	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fnpack.yaml")

	cfg := &Config{
		SourceRoot:    "src/go",
		SharedDirs:    []string{"pkg", "vendorlib"},
		ManifestFiles: []string{"go.mod", "go.sum"},
		OutputDir:     filepath.Join(dir, "dist"),
		Units:         []string{"router", "strava-uploader"},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.SourceRoot, loaded.SourceRoot)
	require.Equal(t, cfg.SharedDirs, loaded.SharedDirs)
	require.Equal(t, cfg.ManifestFiles, loaded.ManifestFiles)
	require.Equal(t, cfg.Units, loaded.Units)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingFile verifies a readable error when the settings file is absent.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
