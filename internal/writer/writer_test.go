package writer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncw/fsync/internal/job"
	"github.com/ncw/fsync/internal/posix"
	"github.com/ncw/fsync/internal/queue"
)

type fakeArena struct {
	jobs map[job.Handle]*job.Job
}

func (a *fakeArena) Job(h job.Handle) *job.Job { return a.jobs[h] }

func newArena(j *job.Job) *fakeArena {
	j.Handle = 1
	return &fakeArena{jobs: map[job.Handle]*job.Job{1: j}}
}

func TestWriterInitCreatesRegularFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dst")

	j := job.NewJob(filepath.Join(dir, "src"), dest)
	j.SourceStat = posix.Status{Exists: true, Mode: 0o644, Size: 5}
	arena := newArena(j)
	p := New(arena, queue.New(1), queue.New(1), 1024)

	p.process(&job.Task{Kind: job.Init, Job: 1})

	st, err := posix.Lstat(dest)
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.True(t, st.IsRegular())
	assert.False(t, j.Log.CreateDest)
}

func TestWriterInitCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dst")

	j := job.NewJob(filepath.Join(dir, "src"), dest)
	j.SourceStat = posix.Status{Exists: true, Mode: os.ModeDir | 0o755}
	arena := newArena(j)
	p := New(arena, queue.New(1), queue.New(1), 1024)

	p.process(&job.Task{Kind: job.Init, Job: 1})

	st, err := posix.Lstat(dest)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestWriterInitRemovesMismatchedType(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dst")
	require.NoError(t, os.Mkdir(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "leftover"), nil, 0o644))

	j := job.NewJob(filepath.Join(dir, "src"), dest)
	j.SourceStat = posix.Status{Exists: true, Mode: 0o644, Size: 0}
	arena := newArena(j)
	p := New(arena, queue.New(1), queue.New(1), 1024)

	p.process(&job.Task{Kind: job.Init, Job: 1})

	st, err := posix.Lstat(dest)
	require.NoError(t, err)
	assert.True(t, st.IsRegular(), "a directory standing where a regular file belongs must be replaced")
}

func TestWriterChunkWritesAtOffset(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(dest, make([]byte, 8), 0o644))

	j := job.NewJob(filepath.Join(dir, "src"), dest)
	j.SetChunkCount(2)
	arena := newArena(j)
	p := New(arena, queue.New(1), queue.New(1), 4)

	p.process(&job.Task{Kind: job.Chunk, Job: 1, ChunkIndex: 1, Payload: []byte("ABCD")})

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 'A', 'B', 'C', 'D'}, data)
}

func TestWriterAttributesPrunesStaleEntries(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dst")
	require.NoError(t, os.Mkdir(source, 0o755))
	require.NoError(t, os.Mkdir(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "keep"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale"), nil, 0o644))

	srcStat, err := posix.Lstat(source)
	require.NoError(t, err)

	j := job.NewJob(source, dest)
	j.SourceStat = srcStat
	arena := newArena(j)
	p := New(arena, queue.New(1), queue.New(1), 1024)

	p.process(&job.Task{Kind: job.Attributes, Job: 1})

	_, err = os.Lstat(filepath.Join(dest, "stale"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(filepath.Join(dest, "keep"))
	assert.NoError(t, err)
}

func TestWriterAttributesNeverChmodsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	dest := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, dest))

	j := job.NewJob(filepath.Join(dir, "src-link"), dest)
	j.SourceStat = posix.Status{Exists: true, Mode: os.ModeSymlink | 0o777, ModTime: time.Now()}
	arena := newArena(j)
	p := New(arena, queue.New(1), queue.New(1), 1024)

	assert.NotPanics(t, func() {
		p.process(&job.Task{Kind: job.Attributes, Job: 1})
	})
	assert.False(t, j.Log.SetMode)
}
