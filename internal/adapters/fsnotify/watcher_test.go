package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// fsnotify Watcher Adapter: detect changes, trigger rescan or pattern reload
// Expectation: File changes detected and callback fired within <100ms
// =============================================================================

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	// Create a temp file, start watching, modify file.
	// onChange callback fires with the modified file path.
	dir := t.TempDir()
	testFile := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("# original"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	err = w.Watch(dir, func(path string) {
		changed <- path
	})
	require.NoError(t, err)

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)

	// Modify the file
	require.NoError(t, os.WriteFile(testFile, []byte("# modified"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, testFile, path)
}

func TestWatcher_DetectsNewFile(t *testing.T) {
	// Create a new file in watched directory.
	// onChange fires with the new file path.
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	err = w.Watch(dir, func(path string) {
		changed <- path
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	newFile := filepath.Join(dir, "new_file.txt")
	require.NoError(t, os.WriteFile(newFile, []byte("# new"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for new file")
	assert.Equal(t, newFile, path)
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	// Delete a file in watched directory.
	// onChange fires so the caller can drop it.
	dir := t.TempDir()
	testFile := filepath.Join(dir, "to_delete.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("# delete me"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	err = w.Watch(dir, func(path string) {
		changed <- path
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Remove(testFile))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted file")
	assert.Equal(t, testFile, path)
}

func TestWatcher_IgnoresNoiseFiles(t *testing.T) {
	// Changes to .git/, node_modules/, .DS_Store, swap files
	// do NOT trigger onChange.
	dir := t.TempDir()

	// Create ignored directories
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))
	nmDir := filepath.Join(dir, "node_modules")
	require.NoError(t, os.MkdirAll(nmDir, 0755))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	err = w.Watch(dir, func(path string) {
		changed <- path
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	// Write to ignored locations
	os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(nmDir, "package.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "test.swp"), []byte("x"), 0644)

	// None of these should trigger callback
	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for ignored files")

	// But a real text file should trigger
	codeFile := filepath.Join(dir, "genome.txt")
	require.NoError(t, os.WriteFile(codeFile, []byte("# code"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for code file")
	assert.Equal(t, codeFile, path)
}

func TestWatcher_CallbackLatency(t *testing.T) {
	// Time from file change to onChange callback < 150ms.
	// Measures fsnotify event delivery plus the quiet period, not rescan cost.
	dir := t.TempDir()
	testFile := filepath.Join(dir, "latency.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("# initial"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	var callbackTime time.Time
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callbackTime = time.Now()
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	writeTime := time.Now()
	require.NoError(t, os.WriteFile(testFile, []byte("# changed"), 0644))

	// Wait for callback
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	latency := callbackTime.Sub(writeTime)
	mu.Unlock()

	assert.Less(t, latency, 150*time.Millisecond, "callback latency %v exceeds 150ms", latency)
	t.Logf("Callback latency: %v", latency)
}

func TestWatcher_StopCleanup(t *testing.T) {
	// After Stop(), no more callbacks fire.
	// Resources cleaned up, no goroutine leaks.
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	// Stop the watcher
	err = w.Stop()
	require.NoError(t, err)

	// Record count after stop
	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	// Write file after stop; should NOT trigger callback
	os.WriteFile(filepath.Join(dir, "after_stop.txt"), []byte("# nope"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()

	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	// Double-stop should be safe
	err = w.Stop()
	assert.NoError(t, err)
}

func TestWatcher_SingleFileOnlyReportsThatFile(t *testing.T) {
	// Watching a pattern file reports its own changes, including the
	// rename-over that editors use on save, and nothing else in its directory.
	dir := t.TempDir()
	patterns := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(patterns, []byte("he\nshe\n"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(patterns, func(path string) {
		changed <- path
	}))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "sibling file must not trigger callback")

	tmp := filepath.Join(dir, "patterns.txt.new")
	require.NoError(t, os.WriteFile(tmp, []byte("his\nhers\n"), 0644))
	require.NoError(t, os.Rename(tmp, patterns))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for replaced pattern file")
	assert.Equal(t, patterns, path)
}

func TestWatcher_BurstFiresOnceWithFinalContent(t *testing.T) {
	// Several writes closer together than the debounce interval produce one
	// callback, and it runs after the last write.
	dir := t.TempDir()
	patterns := filepath.Join(dir, "patterns.txt")
	require.NoError(t, os.WriteFile(patterns, []byte("he\n"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	seen := make(chan string, 10)
	require.NoError(t, w.Watch(patterns, func(path string) {
		data, _ := os.ReadFile(path)
		seen <- string(data)
	}))
	time.Sleep(50 * time.Millisecond)

	f, err := os.OpenFile(patterns, os.O_WRONLY|os.O_TRUNC, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("he\nshe\n")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = f.WriteString("his\nhers\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	content, ok := waitForCallback(seen, 2*time.Second)
	require.True(t, ok, "expected a callback after the burst")
	assert.Equal(t, "he\nshe\nhis\nhers\n", content)

	_, again := waitForCallback(seen, 200*time.Millisecond)
	assert.False(t, again, "burst should coalesce into one callback")
}

func TestWatcher_StopCancelsPending(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher()
	require.NoError(t, err)

	fired := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) { fired <- path }))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0644))
	time.Sleep(10 * time.Millisecond) // event delivered, timer still armed
	require.NoError(t, w.Stop())

	_, ok := waitForCallback(fired, 200*time.Millisecond)
	assert.False(t, ok, "pending callback fired after Stop()")
}

func TestWatcher_MissingPath(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "absent"), func(string) {}))
}
