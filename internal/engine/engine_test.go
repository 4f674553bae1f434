package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("nested content"), 0o644))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(root, "link")))
}

func TestEngineRunMirrorsTree(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	dest := filepath.Join(base, "dest")
	buildTree(t, source)

	cfg := DefaultConfig()
	cfg.ChunkSize = 4 // force multiple chunks on every file
	eng := New(cfg)
	require.NoError(t, eng.Run(context.Background(), source, dest))

	a, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(a))

	b, err := os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested content", string(b))

	target, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", target)
}

func TestEngineRunPrunesStaleDestEntries(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	dest := filepath.Join(base, "dest")
	buildTree(t, source)

	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("old"), 0o644))

	eng := New(DefaultConfig())
	require.NoError(t, eng.Run(context.Background(), source, dest))

	_, err := os.Lstat(filepath.Join(dest, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestEngineRunIsIdempotent(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	dest := filepath.Join(base, "dest")
	buildTree(t, source)

	eng := New(DefaultConfig())
	require.NoError(t, eng.Run(context.Background(), source, dest))

	before, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)

	eng2 := New(DefaultConfig())
	require.NoError(t, eng2.Run(context.Background(), source, dest))

	after, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.EqualValues(t, 0, eng2.Stats().Errors())
}

func TestEngineRunReturnsCtxErrWhenAlreadyCancelled(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	dest := filepath.Join(base, "dest")
	buildTree(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(DefaultConfig())
	assert.ErrorIs(t, eng.Run(ctx, source, dest), context.Canceled)
}

func TestEngineRunShortCircuitsUnchangedFiles(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "source")
	dest := filepath.Join(base, "dest")
	buildTree(t, source)

	eng := New(DefaultConfig())
	require.NoError(t, eng.Run(context.Background(), source, dest))

	eng2 := New(DefaultConfig())
	require.NoError(t, eng2.Run(context.Background(), source, dest))
	assert.Greater(t, eng2.Stats().Skipped(), int64(0))
}
