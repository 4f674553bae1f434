// Package scheduler runs the single-goroutine loop that owns the set of
// in-flight jobs, enforces phase ordering within each job, discovers
// directory children as their parent's INIT completes, and drains the
// dependency graph to empty. There is no direct source in the retrieved
// fastsync engine for this loop (no Scheduler.cpp survived distillation);
// it is built from the original's Job/Task state machine and the
// ThreadedModule start/stop lifecycle idiom, generalized to Go channels
// and goroutines the way the rest of this pipeline was.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/ncw/fsync/internal/job"
	"github.com/ncw/fsync/internal/posix"
	"github.com/ncw/fsync/internal/queue"
	"github.com/ncw/fsync/internal/stats"
)

// Scheduler owns the job arena and the three queues that connect it to
// the reader and writer pools.
type Scheduler struct {
	open    *queue.Queue // scheduler -> readers
	read    *queue.Queue // readers -> writers
	written *queue.Queue // writers -> scheduler

	statPool *posix.Pool
	stats    *stats.Stats

	mu           sync.Mutex
	arena        map[job.Handle]*job.Job
	nextID       job.Handle
	jobsOpen     map[job.Handle]struct{}
	cfgChunkSize int64
}

// New builds a Scheduler around the given queues. statPool bounds the
// parallel fan-out used to stat a directory's children during INIT
// completion (see posix.ParallelLstat).
func New(open, read, written *queue.Queue, statPool *posix.Pool, st *stats.Stats) *Scheduler {
	return &Scheduler{
		open:     open,
		read:     read,
		written:  written,
		statPool: statPool,
		stats:    st,
		arena:    make(map[job.Handle]*job.Job),
		jobsOpen: make(map[job.Handle]struct{}),
	}
}

// Job implements reader.Arena and writer.Arena: a synchronized lookup by
// handle. The scheduler is the only writer of the arena map itself;
// readers and writers only mutate fields of the *job.Job they were
// handed, never the map.
func (s *Scheduler) Job(h job.Handle) *job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena[h]
}

func (s *Scheduler) insert(j *job.Job) job.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.nextID
	s.nextID++
	j.Handle = h
	s.arena[h] = j
	s.jobsOpen[h] = struct{}{}
	return h
}

func (s *Scheduler) destroy(h job.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobsOpen, h)
	delete(s.arena, h)
}

// Run seeds the graph with a single root job for (sourcePath, destPath)
// and drives the pipeline until every job has been destroyed. It returns
// once the graph is empty; callers are responsible for closing the open
// queue and joining the worker pools afterwards (see internal/engine).
// ctx is checked once per completion cycle, at the top of the loop: a
// mid-flight CHUNK read or write is never interrupted, only the decision
// to wait for the next one.
func (s *Scheduler) Run(ctx context.Context, sourcePath, destPath string) error {
	root := job.NewJob(sourcePath, destPath)
	h := s.insert(root)
	s.scheduleNext(h)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		remaining := len(s.jobsOpen)
		s.mu.Unlock()
		if remaining == 0 {
			return nil
		}

		item, ok := s.written.Pop()
		if !ok {
			return fmt.Errorf("written queue closed while %d jobs remained", remaining)
		}
		t := item.(*job.Task)
		s.onComplete(t)

		// Having freed up capacity and possibly unblocked dependents,
		// try to push more work before waiting on the next completion.
		s.mu.Lock()
		handles := make([]job.Handle, 0, len(s.jobsOpen))
		for hh := range s.jobsOpen {
			handles = append(handles, hh)
		}
		s.mu.Unlock()
		for _, hh := range handles {
			s.scheduleNext(hh)
		}
	}
}

func (s *Scheduler) onComplete(t *job.Task) {
	j := s.Job(t.Job)
	if j == nil {
		return
	}
	switch t.Kind {
	case job.Init:
		s.onInitComplete(j)
	case job.Chunk:
		j.ChunkState[t.ChunkIndex] = job.Done
		if !j.Log.WriteChunk[t.ChunkIndex] {
			s.stats.AddBytes(int64(len(t.Payload)))
		}
		fmt.Fprintf(os.Stdout, "C%d %s\n", t.ChunkIndex, j.SourcePath)
	case job.Attributes:
		j.AttribState = job.Done
		s.finishAttributes(j)
	}
}

func (s *Scheduler) onInitComplete(j *job.Job) {
	j.InitState = job.Done
	fmt.Fprintf(os.Stdout, "I %s\n", j.SourcePath)

	if !j.SourceStat.Exists {
		// Unreadable or vanished source: nothing to chunk or discover,
		// fall through to a no-op ATTRIBUTES phase.
		return
	}

	if j.SourceStat.IsRegular() {
		n := 0
		if s.chunkSize() > 0 && j.SourceStat.Size > 0 {
			n = int((j.SourceStat.Size + s.chunkSize() - 1) / s.chunkSize())
		}
		j.SetChunkCount(n)
	}

	if j.SourceStat.IsDir() {
		s.discoverChildren(j)
	}

	// Short-circuit: a regular file or symlink already matching the
	// destination skips CHUNK and ATTRIBUTES entirely. It still must
	// clear its dependency edge so a parent directory's own ATTRIBUTES
	// phase isn't left waiting on a job that will never reach it.
	if (j.SourceStat.IsRegular() || j.SourceStat.IsSymlink()) && posix.SameAttrs(j.SourceStat, j.DestStat) {
		s.stats.AddSkipped()
		s.detachFromParent(j)
		s.destroy(j.Handle)
		return
	}
}

// detachFromParent removes h's dependency edge from its parent, if any -
// the operation that lets a parent directory's ATTRIBUTES phase become
// schedulable once every child has either finished or short-circuited.
func (s *Scheduler) detachFromParent(j *job.Job) {
	if !j.HasParent {
		return
	}
	s.mu.Lock()
	if parent, ok := s.arena[j.Parent]; ok {
		delete(parent.Dependencies, j.Handle)
	}
	s.mu.Unlock()
}

func (s *Scheduler) discoverChildren(parent *job.Job) {
	names, err := posix.ReadDirNames(parent.SourcePath)
	if err != nil {
		log.Printf("list dir %s: %v", parent.SourcePath, err)
		return
	}
	entries := posix.ParallelLstat(s.statPool, parent.SourcePath, names)

	s.mu.Lock()
	for _, e := range entries {
		if e.Err != nil {
			log.Printf("stat %s: %v", filepath.Join(parent.SourcePath, e.Name), e.Err)
			continue
		}
		name := norm.NFC.String(e.Name)
		child := job.NewJob(filepath.Join(parent.SourcePath, name), filepath.Join(parent.DestPath, name))
		child.Parent = parent.Handle
		child.HasParent = true
		h := s.nextID
		s.nextID++
		child.Handle = h
		s.arena[h] = child
		s.jobsOpen[h] = struct{}{}
		parent.Dependencies[h] = struct{}{}
	}
	s.mu.Unlock()
}

func (s *Scheduler) finishAttributes(j *job.Job) {
	if j.Log.Any() {
		s.stats.AddError()
	}
	fmt.Fprintf(os.Stdout, "A %s\n", j.SourcePath)
	s.detachFromParent(j)
	s.destroy(j.Handle)
}

// scheduleNext pushes at most one new task for the job named by h,
// implementing the per-job ordering invariants: INIT before any CHUNK,
// chunks strictly in ascending order, ATTRIBUTES only once every chunk is
// done and every dependency has been destroyed.
func (s *Scheduler) scheduleNext(h job.Handle) {
	s.mu.Lock()
	j, ok := s.arena[h]
	if !ok {
		s.mu.Unlock()
		return
	}

	switch {
	case j.InitState == job.Open:
		j.InitState = job.Scheduled
		s.mu.Unlock()
		s.open.Push(&job.Task{Kind: job.Init, Job: h})
		return

	case j.InitState == job.Done:
		if idx, ok := j.NextOpenChunk(); ok {
			j.ChunkState[idx] = job.Scheduled
			s.mu.Unlock()
			s.open.Push(&job.Task{Kind: job.Chunk, Job: h, ChunkIndex: idx})
			return
		}
		if j.AllChunksDone() && j.AttribState == job.Open && len(j.Dependencies) == 0 {
			j.AttribState = job.Scheduled
			s.mu.Unlock()
			s.open.Push(&job.Task{Kind: job.Attributes, Job: h})
			return
		}
	}
	s.mu.Unlock()
}

func (s *Scheduler) chunkSize() int64 {
	return s.cfgChunkSize
}

// SetChunkSize configures the chunk size used when sizing a regular
// file's CHUNK phases. Must be called before Run.
func (s *Scheduler) SetChunkSize(n int64) { s.cfgChunkSize = n }
