package todo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todos.json")
	other := filepath.Join(dir, "other.json")

	changes := make(chan string, 4)
	w, err := NewWatcher(func(p string) { changes <- p })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AddFile(path))
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	select {
	case got := <-changes:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherRemoveFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")

	w, err := NewWatcher(nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AddFile(a))
	require.NoError(t, w.AddFile(b))
	require.NoError(t, w.RemoveFile(a))
	assert.False(t, w.watching(a))
	assert.True(t, w.watching(b))
	assert.Equal(t, 1, w.dirs[dir])

	// Removing twice is harmless
	require.NoError(t, w.RemoveFile(a))
	require.NoError(t, w.RemoveFile(b))
	assert.Empty(t, w.dirs)
}

func TestWatcherStaleTimerKeepsNewerOne(t *testing.T) {
	path, err := filepath.Abs(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)

	var fired []string
	w, err := NewWatcher(func(p string) { fired = append(fired, p) })
	require.NoError(t, err)
	defer w.Close()
	w.debounce = time.Hour
	require.NoError(t, w.AddFile(path))

	w.schedule(path)
	w.timersMu.Lock()
	stale := w.timers[path]
	w.timersMu.Unlock()
	w.schedule(path)

	// The replaced timer's callback runs late
	w.fire(path, stale)

	w.timersMu.Lock()
	newer, ok := w.timers[path]
	w.timersMu.Unlock()
	assert.True(t, ok, "newer timer still tracked")
	assert.NotSame(t, stale, newer)
	assert.Empty(t, fired)

	w.fire(path, newer)
	assert.Equal(t, []string{path}, fired)
	w.timersMu.Lock()
	assert.Empty(t, w.timers)
	w.timersMu.Unlock()
	newer.Stop()
}
