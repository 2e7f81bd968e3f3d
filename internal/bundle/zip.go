package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/flate"
)

var (
	// ErrReadFailed wraps failures reading staged files during archiving.
	ErrReadFailed = errors.New("read failed")
	// ErrWriteFailed wraps failures producing the archive file.
	ErrWriteFailed = errors.New("write failed")
)

// archiveEpoch is the timestamp stamped on every archive entry instead of the
// file's real modification time. It is the earliest time the zip format can
// represent, so identical staging trees serialize to identical bytes no
// matter when their files were checked out or copied.
//
//nolint:gochecknoglobals // Fixed constant, time.Date cannot be a const.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ArchiveExtension is appended to the unit name to form the archive filename.
const ArchiveExtension = ".zip"

// WriteArchive serializes the staging tree rooted at stagingDir into a single
// compressed zip file at archivePath. Entry order, entry names and entry
// metadata are a total function of the tree's contents: traversal is sorted
// at every directory level, names use forward slashes regardless of host OS
// and timestamps are pinned to the zip epoch.
//
// On failure no partial archive is left behind.
func WriteArchive(stagingDir, archivePath string) error {
	entries, err := enumerate(stagingDir, "")
	if err != nil {
		return err
	}

	out, err := os.Create(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, archivePath, err)
	}

	zw := zip.NewWriter(out)

	// Pin the Deflate encoder so the compressed byte stream depends only on
	// the inputs and the pinned compressor version, not on the Go release.
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	if err = writeEntries(zw, stagingDir, entries); err != nil {
		_ = zw.Close()
		_ = out.Close()
		_ = os.Remove(archivePath)

		return err
	}

	if err = zw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(archivePath)

		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, archivePath, err)
	}

	if err = out.Close(); err != nil {
		_ = os.Remove(archivePath)

		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, archivePath, err)
	}

	return nil
}

// enumerate walks dir and returns archive-relative entry paths in canonical
// order: the files of each directory sorted by name, then each subdirectory
// in sorted order, depth-first. The sorts are explicit because archive entry
// order must never depend on filesystem-reported listing order.
//
// Command-entry-point directories are skipped here even if staging let one
// through a shared root.
func enumerate(dir, prefix string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrReadFailed, dir, err)
	}

	var dirs, files []string

	for _, entry := range dirEntries {
		if entry.IsDir() {
			if entry.Name() == commandDirName {
				continue
			}

			dirs = append(dirs, entry.Name())

			continue
		}

		files = append(files, entry.Name())
	}

	sort.Strings(files)
	sort.Strings(dirs)

	paths := make([]string, 0, len(files))
	for _, name := range files {
		paths = append(paths, path.Join(prefix, name))
	}

	for _, name := range dirs {
		sub, err := enumerate(filepath.Join(dir, name), path.Join(prefix, name))
		if err != nil {
			return nil, err
		}

		paths = append(paths, sub...)
	}

	return paths, nil
}

// writeEntries appends every enumerated file to the archive in order,
// compressed, with the timestamp overridden to the archive epoch.
func writeEntries(zw *zip.Writer, stagingDir string, entries []string) error {
	for _, rel := range entries {
		// A staged file disappearing between enumeration and read aborts the
		// unit's packaging rather than producing a partial archive.
		contents, err := os.ReadFile(filepath.Join(stagingDir, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadFailed, rel, err)
		}

		//nolint:exhaustruct // Remaining header fields are derived by the writer.
		header := &zip.FileHeader{
			Name:     rel,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}

		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, rel, err)
		}

		if _, err = w.Write(contents); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, rel, err)
		}
	}

	return nil
}
