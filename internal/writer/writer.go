// Package writer implements the destination-side half of the pipeline: a
// pool of worker goroutines that create/update destination entries,
// write chunk bytes, prune stale directory contents, and apply
// timestamps/ownership/mode. Grounded on the original fastsync engine's
// ModWriter::run, generalized from a single OpenMP thread into an
// N-goroutine pool.
package writer

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/ncw/fsync/internal/job"
	"github.com/ncw/fsync/internal/posix"
	"github.com/ncw/fsync/internal/queue"
)

// Arena is the minimal view of the scheduler's job table a writer needs.
type Arena interface {
	Job(h job.Handle) *job.Job
}

// Pool runs n writer goroutines pulling from in and pushing completed
// tasks to out, until in is closed and drained.
type Pool struct {
	arena     Arena
	in        *queue.Queue
	out       *queue.Queue
	chunkSize int64
	wg        sync.WaitGroup
}

func New(arena Arena, in, out *queue.Queue, chunkSize int64) *Pool {
	return &Pool{arena: arena, in: in, out: out, chunkSize: chunkSize}
}

func (p *Pool) Start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

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
		p.doAttributes(j)
	}
}

func (p *Pool) doInit(j *job.Job, t *job.Task) {
	dest, err := posix.Lstat(j.DestPath)
	if err != nil {
		log.Printf("stat dest %s: %v", j.DestPath, err)
	}
	j.DestStat = dest

	if !j.SourceStat.Exists {
		// The reader couldn't stat the source (or it vanished); there is
		// nothing well-typed to create here.
		return
	}

	switch {
	case j.SourceStat.IsRegular():
		p.initRegular(j)
	case j.SourceStat.IsDir():
		p.initDir(j)
	case j.SourceStat.IsSymlink():
		p.initSymlink(j, t)
	}
}

func (p *Pool) removeStaleDest(j *job.Job) {
	if !j.DestStat.Exists {
		return
	}
	if err := posix.RemoveAll(j.DestPath); err != nil {
		j.Log.DeleteOld = true
		log.Printf("delete stale dest %s: %v", j.DestPath, err)
	}
	st, err := posix.Lstat(j.DestPath)
	if err != nil {
		log.Printf("restat dest %s: %v", j.DestPath, err)
	}
	j.DestStat = st
}

func (p *Pool) initRegular(j *job.Job) {
	if j.DestStat.Exists && !j.DestStat.IsRegular() {
		p.removeStaleDest(j)
	}
	if j.DestStat.IsRegular() && posix.SameAttrs(j.SourceStat, j.DestStat) {
		return
	}
	f, err := posix.CreateTruncate(j.DestPath, j.SourceStat.Mode)
	if err != nil {
		j.Log.CreateDest = true
		log.Printf("create dest %s: %v", j.DestPath, err)
		return
	}
	defer f.Close()
	if err := posix.Preallocate(j.SourceStat.Size, f); err != nil {
		log.Printf("preallocate %s: %v", j.DestPath, err)
	}
}

func (p *Pool) initDir(j *job.Job) {
	if j.DestStat.Exists && !j.DestStat.IsDir() {
		p.removeStaleDest(j)
	}
	if j.DestStat.IsDir() {
		return
	}
	if err := posix.Mkdir(j.DestPath, j.SourceStat.Mode); err != nil {
		j.Log.CreateDest = true
		log.Printf("mkdir %s: %v", j.DestPath, err)
	}
}

func (p *Pool) initSymlink(j *job.Job, t *job.Task) {
	if j.DestStat.Exists && (!j.DestStat.IsSymlink() || !posix.SameAttrs(j.SourceStat, j.DestStat)) {
		p.removeStaleDest(j)
	}
	if j.DestStat.IsSymlink() && posix.SameAttrs(j.SourceStat, j.DestStat) {
		return
	}
	if len(t.Payload) == 0 {
		return
	}
	if err := posix.Symlink(string(t.Payload), j.DestPath); err != nil {
		j.Log.CreateDest = true
		log.Printf("create symlink %s: %v", j.DestPath, err)
	}
}

func (p *Pool) doChunk(j *job.Job, t *job.Task) {
	if len(t.Payload) == 0 {
		return
	}
	f, err := posix.OpenWriteAt(j.DestPath)
	if err != nil {
		j.Log.WriteChunk[t.ChunkIndex] = true
		log.Printf("write chunk %d of %s: %v", t.ChunkIndex, j.DestPath, err)
		return
	}
	defer f.Close()
	start := int64(t.ChunkIndex) * p.chunkSize
	if _, err := f.WriteAt(t.Payload, start); err != nil {
		j.Log.WriteChunk[t.ChunkIndex] = true
		log.Printf("write chunk %d of %s: %v", t.ChunkIndex, j.DestPath, err)
	}
}

func (p *Pool) doAttributes(j *job.Job) {
	if !j.SourceStat.Exists {
		return
	}
	dest, err := posix.Lstat(j.DestPath)
	if err != nil {
		log.Printf("restat dest %s: %v", j.DestPath, err)
	}
	j.DestStat = dest
	if !dest.Exists {
		return
	}

	if dest.IsDir() {
		p.pruneDir(j)
		dest, _ = posix.Lstat(j.DestPath)
		j.DestStat = dest
	}

	if !j.SourceStat.ModTime.Equal(dest.ModTime) || !j.SourceStat.AccessTime.Equal(dest.AccessTime) {
		if err := posix.SetTimes(j.DestPath, j.SourceStat.AccessTime, j.SourceStat.ModTime); err != nil {
			j.Log.SetTimes = true
			log.Printf("set times %s: %v", j.DestPath, err)
		}
	}

	if j.SourceStat.Uid != dest.Uid || j.SourceStat.Gid != dest.Gid {
		if err := posix.Chown(j.DestPath, j.SourceStat.Uid, j.SourceStat.Gid); err != nil {
			j.Log.SetOwner = true
			log.Printf("chown %s: %v", j.DestPath, err)
		}
	}

	if !j.SourceStat.IsSymlink() && j.SourceStat.Mode != dest.Mode {
		if err := posix.Chmod(j.DestPath, j.SourceStat.Mode); err != nil {
			j.Log.SetMode = true
			log.Printf("chmod %s: %v", j.DestPath, err)
		}
	}
}

func (p *Pool) pruneDir(j *job.Job) {
	names, err := posix.ReadDirNames(j.DestPath)
	if err != nil {
		log.Printf("list dest dir %s: %v", j.DestPath, err)
		return
	}
	for _, name := range names {
		sourceChild := filepath.Join(j.SourcePath, name)
		if st, err := posix.Lstat(sourceChild); err == nil && st.Exists {
			continue
		}
		destChild := filepath.Join(j.DestPath, name)
		if err := posix.RemoveAll(destChild); err != nil {
			j.Log.DeleteDirContents = true
			log.Printf("prune %s: %v", destChild, err)
		}
	}
}
