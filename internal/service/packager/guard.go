package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/fitglue/fnpack/internal/logger"
)

const (
	// MarkerFilename flags a packaging run in progress in the output directory,
	// so two processes never race on the same staging and archive paths.
	MarkerFilename = "fnpack-run-marker.bin"

	// basePackagerExecutable is the process name checked when reclaiming a stale marker.
	basePackagerExecutable = "fnpack"

	// markerLifetime is the period after which a stale run marker is reclaimed.
	markerLifetime = 30 * time.Second
)

// errPackagerRunning indicates another packaging run owns the output directory.
var errPackagerRunning = errors.New("another packaging run is in progress")

// acquireRunMarker claims the output directory for this run by creating a
// marker file. The returned release function removes the marker and must be
// called once the run finishes.
func acquireRunMarker(ctx context.Context, dir string) (func(context.Context), error) {
	markerPath := filepath.Join(dir, MarkerFilename)

	if isPackagerRunningNow(ctx, markerPath) {
		return nil, fmt.Errorf("%w: %s", errPackagerRunning, markerPath)
	}

	marker, err := os.Create(markerPath)
	if err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, fmt.Errorf("close run marker: %w", err)
	}

	release := func(ctx context.Context) {
		if err := os.Remove(markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf(ctx, "Unable to remove run marker: %v", err)
		}
	}

	return release, nil
}

// isPackagerRunningNow checks presence of a marker file and attempts recovery
// if it looks stale.
func isPackagerRunningNow(ctx context.Context, markerPath string) bool {
	fileInfo, err := os.Stat(markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is too old, attempting cleanup")

		if err = terminateProcessByName(packagerExecutable()); err != nil {
			return true
		}

		if err = os.Remove(markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// packagerExecutable returns the platform-specific packager process name.
func packagerExecutable() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return basePackagerExecutable + ".exe"
	}

	return basePackagerExecutable
}
