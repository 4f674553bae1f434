// Package reader implements the source-side half of the pipeline: a pool
// of worker goroutines that turn INIT/CHUNK/ATTRIBUTES tasks into stat
// results, symlink targets and chunk bytes. Grounded on the original
// fastsync engine's ModReader::run, generalized from a single OpenMP
// thread into an N-goroutine pool reading from a queue.Queue.
package reader

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ncw/fsync/internal/job"
	"github.com/ncw/fsync/internal/posix"
	"github.com/ncw/fsync/internal/queue"
)

// Arena is the minimal view of the scheduler's job table a reader needs:
// look a Job up by handle. Readers never mutate the arena's membership,
// only the Job fields that belong to their own phase.
type Arena interface {
	Job(h job.Handle) *job.Job
}

// Pool runs n reader goroutines pulling from in and pushing completed
// tasks to out, until in is closed and drained.
type Pool struct {
	arena     Arena
	in        *queue.Queue
	out       *queue.Queue
	chunkSize int64
	wg        sync.WaitGroup
}

// New builds a reader Pool.
func New(arena Arena, in, out *queue.Queue, chunkSize int64) *Pool {
	return &Pool{arena: arena, in: in, out: out, chunkSize: chunkSize}
}

// Start launches n reader goroutines. Call Wait to block until they have
// all exited, which happens once in is closed and drained.
func (p *Pool) Start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// Wait blocks until every reader goroutine launched by Start has exited.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		item, ok := p.in.Pop()
		if !ok {
			return
		}
		t := item.(*job.Task)
		p.process(t)
		p.out.Push(t)
	}
}

func (p *Pool) process(t *job.Task) {
	j := p.arena.Job(t.Job)
	switch t.Kind {
	case job.Init:
		p.doInit(j, t)
	case job.Chunk:
		p.doChunk(j, t)
	case job.Attributes:
		// Attributes were already captured by the INIT lstat; nothing
		// source-side remains to read.
	}
}

func (p *Pool) doInit(j *job.Job, t *job.Task) {
	st, err := posix.Lstat(j.SourcePath)
	if err != nil {
		j.Log.StatSource = true
		log.Printf("stat source %s: %v", j.SourcePath, err)
	}
	j.SourceStat = st

	switch {
	case !st.Exists:
		j.Log.SourceType = true
	case st.IsRegular(), st.IsDir(), st.IsSymlink():
		// recognized type
	default:
		j.Log.SourceType = true
	}

	if st.IsSymlink() {
		target, err := posix.ReadLink(j.SourcePath)
		if err != nil {
			j.Log.ReadLink = true
			if posix.IsCircularSymlink(err) {
				log.Printf("read symlink %s: circular symlink: %v", j.SourcePath, err)
			} else {
				log.Printf("read symlink %s: %v", j.SourcePath, err)
			}
			t.Payload = nil
			return
		}
		t.Payload = []byte(target)
	}
}

func (p *Pool) doChunk(j *job.Job, t *job.Task) {
	start := int64(t.ChunkIndex) * p.chunkSize
	size := p.chunkSize
	if remaining := j.SourceStat.Size - start; remaining < size {
		size = remaining
	}
	if size <= 0 {
		t.Payload = nil
		return
	}

	f, err := posix.OpenReadAt(j.SourcePath)
	if err != nil {
		j.Log.ReadChunk[t.ChunkIndex] = true
		log.Printf("read chunk %d of %s: %v", t.ChunkIndex, j.SourcePath, err)
		return
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, start)
	if err == io.EOF && n == len(buf) {
		err = nil
	}
	if err != nil {
		j.Log.ReadChunk[t.ChunkIndex] = true
		log.Printf("read chunk %d of %s: %v", t.ChunkIndex, j.SourcePath, fmt.Errorf("read at %d: %w", start, err))
		t.Payload = buf[:n]
		return
	}
	t.Payload = buf[:n]
}
