package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOpenChunkRequiresStrictOrder(t *testing.T) {
	j := NewJob("/src/f", "/dst/f")
	j.SetChunkCount(3)

	idx, ok := j.NextOpenChunk()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	j.ChunkState[0] = Scheduled
	_, ok = j.NextOpenChunk()
	assert.False(t, ok, "chunk 1 must not be emittable while chunk 0 is still in flight")

	j.ChunkState[0] = Done
	idx, ok = j.NextOpenChunk()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestAllChunksDone(t *testing.T) {
	j := NewJob("/src/f", "/dst/f")
	j.SetChunkCount(2)
	assert.False(t, j.AllChunksDone())

	j.ChunkState[0] = Done
	assert.False(t, j.AllChunksDone())

	j.ChunkState[1] = Done
	assert.True(t, j.AllChunksDone())
}

func TestZeroChunkJobIsVacuouslyAllDone(t *testing.T) {
	j := NewJob("/src/d", "/dst/d")
	j.SetChunkCount(0)
	assert.True(t, j.AllChunksDone())
	_, ok := j.NextOpenChunk()
	assert.False(t, ok)
}

func TestErrorLogAny(t *testing.T) {
	var l ErrorLog
	assert.False(t, l.Any())

	l.SetTimes = true
	assert.True(t, l.Any())

	l2 := ErrorLog{ReadChunk: []bool{false, false, true}}
	assert.True(t, l2.Any())
}
