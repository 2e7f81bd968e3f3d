package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes one packaging run: where unit sources live,
// which units to package and where archives are written.
type Config struct {
	// SourceRoot is the directory housing per-unit sources, shared code and manifests.
	SourceRoot string `yaml:"source_root"`
	// FunctionsDir is the subdirectory of SourceRoot holding one directory per unit.
	FunctionsDir string `yaml:"functions_dir"`
	// SharedDirs are subdirectories of SourceRoot copied into every bundle.
	// A shared directory missing on disk is skipped, not an error.
	SharedDirs []string `yaml:"shared_dirs"`
	// ManifestFiles are files in SourceRoot copied verbatim into every bundle's top level.
	ManifestFiles []string `yaml:"manifest_files"`
	// OutputDir is where archives, the bundle manifest and staging trees are placed.
	OutputDir string `yaml:"output_dir"`
	// Units are the names of the deployable functions to package.
	Units []string `yaml:"units"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "fnpack.yaml"

	// DefaultFunctionsDir is the conventional per-unit source directory.
	DefaultFunctionsDir = "functions"

	// DefaultSharedDir is the conventional shared source directory.
	DefaultSharedDir = "pkg"

	// DefaultOutputDir is where archives land when none is configured.
	DefaultOutputDir = "dist"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSourceRootRequired is returned when the source root is missing.
	errSourceRootRequired = errors.New("source root must be provided")
	// errNoUnits is returned when the unit list is empty.
	errNoUnits = errors.New("at least one unit must be configured")
	// errBadUnitName is returned for empty unit names or names containing path separators.
	errBadUnitName = errors.New("unit name must be a plain directory name")
	// errDuplicateUnit is returned when the same unit is configured twice.
	errDuplicateUnit = errors.New("unit configured more than once")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided configuration for required fields
// and fills in conventional defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.SourceRoot == "" {
		return errSourceRootRequired
	}

	if len(cfg.Units) == 0 {
		return errNoUnits
	}

	seen := make(map[string]struct{}, len(cfg.Units))

	for _, name := range cfg.Units {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: %q", errBadUnitName, name)
		}

		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", errDuplicateUnit, name)
		}

		seen[name] = struct{}{}
	}

	// Fill in conventional source layout defaults.
	if cfg.FunctionsDir == "" {
		cfg.FunctionsDir = DefaultFunctionsDir
	}

	if cfg.SharedDirs == nil {
		cfg.SharedDirs = []string{DefaultSharedDir}
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	return nil
}
