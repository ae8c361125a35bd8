package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, onChange func(string)) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := New(path, onChange).WithDebounce(20 * time.Millisecond)
	go func() { done <- w.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// give fsnotify time to register the directory
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestWatch_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.threatforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n"), 0644))

	var calls atomic.Int32
	var got atomic.Value
	startWatcher(t, path, func(p string) {
		calls.Add(1)
		got.Store(p)
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n# edit\n"), 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, got.Load())
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.threatforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	startWatcher(t, path, func(string) { calls.Add(1) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b"), 0644))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatch_SeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.threatforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	startWatcher(t, path, func(string) { calls.Add(1) })

	tmp := filepath.Join(dir, ".model.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope", "model.yaml"), func(string) {})
	assert.Error(t, w.Watch(context.Background()))
}
