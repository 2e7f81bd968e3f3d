package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrSourceNotFound means a required source root is missing on disk.
	ErrSourceNotFound = errors.New("source root not found")
	// ErrStagingExists means the staging directory is already present,
	// most likely left over from a crashed prior run.
	ErrStagingExists = errors.New("staging directory already exists")
	// ErrCopyFailed wraps I/O failures while populating a staging tree.
	ErrCopyFailed = errors.New("copy failed")
)

const (
	// stagingDirPermissions is used for directories created inside a staging tree.
	stagingDirPermissions os.FileMode = 0o755
	// stagingFilePermissions is used for files copied into a staging tree.
	stagingFilePermissions os.FileMode = 0o644
)

// Stage populates dest with the exact file set to archive for the unit:
// the private source root under the unit's name, each shared root that exists
// on disk under its base name, and every manifest file at the top level.
// The inclusion filters are re-evaluated at every directory level of the copy.
//
// dest must not already exist; callers clear stale staging state first.
func Stage(unit *Unit, dest string) error {
	if _, err := os.Stat(unit.SourceDir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, unit.SourceDir)
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", unit.SourceDir, err)
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrStagingExists, dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dest, err)
	}

	if err := os.MkdirAll(dest, stagingDirPermissions); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrCopyFailed, dest, err)
	}

	// The unit's private sources, with the strict filter.
	if err := copyTree(unit.SourceDir, filepath.Join(dest, unit.Name), UnitExcludes); err != nil {
		return err
	}

	// Shared roots carry no entry points, so only test files are filtered.
	for _, shared := range unit.SharedDirs {
		if _, err := os.Stat(shared); errors.Is(err, os.ErrNotExist) {
			// A unit without shared code is fine.
			continue
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", shared, err)
		}

		if err := copyTree(shared, filepath.Join(dest, filepath.Base(shared)), SharedExcludes); err != nil {
			return err
		}
	}

	for _, manifest := range unit.ManifestFiles {
		if err := copyFile(manifest, filepath.Join(dest, filepath.Base(manifest))); err != nil {
			return err
		}
	}

	return nil
}

// copyTree recursively copies src into dest, asking exclude at every
// directory level which entries to leave behind.
func copyTree(src, dest string, exclude ExcludeFunc) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrCopyFailed, src, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	excluded := sliceToSet(exclude(src, names))

	if err = os.MkdirAll(dest, stagingDirPermissions); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrCopyFailed, dest, err)
	}

	for _, entry := range entries {
		if _, ok := excluded[entry.Name()]; ok {
			continue
		}

		var (
			srcPath  = filepath.Join(src, entry.Name())
			destPath = filepath.Join(dest, entry.Name())
		)

		if entry.IsDir() {
			if err = copyTree(srcPath, destPath, exclude); err != nil {
				return err
			}

			continue
		}

		if err = copyFile(srcPath, destPath); err != nil {
			return err
		}
	}

	return nil
}

// copyFile copies a single file, preserving nothing but its bytes.
func copyFile(src, dest string) error {
	contents, err := os.ReadFile(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCopyFailed, src, err)
	}

	if err = os.WriteFile(dest, contents, stagingFilePermissions); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCopyFailed, dest, err)
	}

	return nil
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
