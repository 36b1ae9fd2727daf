package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalasetu/artist-tracker/constants"
)

func TestAllowed(t *testing.T) {
	assert.True(t, allowed("/in/bio.pdf", constants.AllowedExtensions))
	assert.True(t, allowed("/in/scan.JPG", constants.AllowedExtensions))
	assert.True(t, allowed("/in/profile.docx", constants.AllowedExtensions))
	assert.False(t, allowed("/in/notes.txt", constants.AllowedExtensions))
	assert.False(t, allowed("/in/noext", constants.AllowedExtensions))
}

func TestWatcherDebouncedDeliveryAndClose(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, errCh, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	// a burst of writes to the same file must coalesce to one event
	path := filepath.Join(dir, "bio.pdf")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	}

	select {
	case got := <-evCh:
		assert.Equal(t, path, got)
	case err := <-errCh:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
	}

	// cancel must close the channel without further sends
	cancel()
	select {
	case _, open := <-evCh:
		for open {
			_, open = <-evCh
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}

func TestWatcherRejectsEmptyRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/in/.DS_Store"))
	assert.True(t, IsHidden(".hidden.pdf"))
	assert.False(t, IsHidden("/in/visible.pdf"))
}
