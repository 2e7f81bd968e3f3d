package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestAcquireRunMarker_Exclusive ensures a second acquisition fails while the
// marker is held and succeeds again after release.
func TestAcquireRunMarker_Exclusive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	release, err := acquireRunMarker(ctx, dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, MarkerFilename))
	require.NoError(t, err)

	_, err = acquireRunMarker(ctx, dir)
	require.ErrorIs(t, err, errPackagerRunning)

	release(ctx)

	_, err = os.Stat(filepath.Join(dir, MarkerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)

	release2, err := acquireRunMarker(ctx, dir)
	require.NoError(t, err)

	release2(ctx)
}

// TestIsPackagerRunningNow_StaleMarker ensures an old marker is reclaimed
// when no packager process is alive.
func TestIsPackagerRunningNow_StaleMarker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	markerPath := filepath.Join(t.TempDir(), MarkerFilename)

	require.NoError(t, os.WriteFile(markerPath, nil, 0o644))

	stale := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(markerPath, stale, stale))

	require.False(t, isPackagerRunningNow(ctx, markerPath))

	// Reclaiming removes the marker.
	_, err := os.Stat(markerPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestIsPackagerRunningNow_FreshMarker ensures a recent marker blocks the run.
func TestIsPackagerRunningNow_FreshMarker(t *testing.T) {
	t.Parallel()

	markerPath := filepath.Join(t.TempDir(), MarkerFilename)
	require.NoError(t, os.WriteFile(markerPath, nil, 0o644))

	require.True(t, isPackagerRunningNow(context.Background(), markerPath))
}
