// Package job holds the scheduler's record of in-flight filesystem entries
// (Job) and the ephemeral pipeline work items that move between the
// reader and writer pools (Task). Grounded on the original fastsync
// engine's Job.h/Task.h: a Job tracks per-phase state and a directory's
// dependency edges onto its children; a Task is a single phase's unit of
// work against one Job.
package job

import "github.com/ncw/fsync/internal/posix"

// Phase is the lifecycle of one piece of a Job: INIT, a CHUNK, or
// ATTRIBUTES.
type Phase int

const (
	Open Phase = iota
	Scheduled
	Done
)

func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case Scheduled:
		return "scheduled"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Handle addresses a Job by a stable integer into the scheduler's arena,
// never by pointer - a dependency edge is a relation between handles, so
// the graph can never become an ownership cycle.
type Handle int

// ErrorLog records which phases of a Job failed, named after the
// taxonomy in the original Job::Log struct. These flags are consulted
// only for reporting; the scheduler never branches on them.
type ErrorLog struct {
	StatSource        bool
	SourceType        bool
	ReadLink          bool
	DeleteOld         bool
	CreateDest        bool
	ReadChunk         []bool
	WriteChunk        []bool
	DeleteDirContents bool
	SetTimes          bool
	SetOwner          bool
	SetMode           bool
}

// Any reports whether at least one error flag is set, used by the
// scheduler to count a finished job as an error in the run's stats.
func (l *ErrorLog) Any() bool {
	if l.StatSource || l.SourceType || l.ReadLink || l.DeleteOld ||
		l.CreateDest || l.DeleteDirContents || l.SetTimes || l.SetOwner || l.SetMode {
		return true
	}
	for _, e := range l.ReadChunk {
		if e {
			return true
		}
	}
	for _, e := range l.WriteChunk {
		if e {
			return true
		}
	}
	return false
}

// Job is the scheduler's record for one source/destination pair. Workers
// never hold a Job beyond the lifetime of the Task that references it,
// and each phase is mutated by exactly one kind of worker, so no lock on
// Job is required - only the scheduler's own single-goroutine access to
// phase state needs to stay serialized, which it already is by
// construction (see internal/scheduler).
type Job struct {
	Handle    Handle
	Parent    Handle
	HasParent bool

	SourcePath string
	DestPath   string

	SourceStat posix.Status
	DestStat   posix.Status

	InitState   Phase
	ChunkState  []Phase
	AttribState Phase

	// Dependencies holds the handles of child jobs whose ATTRIBUTES phase
	// must reach Done before this job's own ATTRIBUTES phase may start.
	// Only directories ever have entries here.
	Dependencies map[Handle]struct{}

	Log ErrorLog
}

// NewJob allocates a Job for the given source/destination pair. The
// caller (the scheduler) assigns Handle and Parent when it inserts the
// job into its arena.
func NewJob(sourcePath, destPath string) *Job {
	return &Job{
		SourcePath:   sourcePath,
		DestPath:     destPath,
		Dependencies: make(map[Handle]struct{}),
	}
}

// SetChunkCount sizes ChunkState and the per-chunk error slots once the
// reader's INIT phase has learned the source file's size.
func (j *Job) SetChunkCount(n int) {
	j.ChunkState = make([]Phase, n)
	j.Log.ReadChunk = make([]bool, n)
	j.Log.WriteChunk = make([]bool, n)
}

// ChunkCount returns how many chunks this job's regular file was split
// into (zero for directories and symlinks).
func (j *Job) ChunkCount() int { return len(j.ChunkState) }

// NextOpenChunk returns the index of the lowest-numbered chunk still Open,
// provided every lower-indexed chunk is already Done (the strict ordering
// invariant the scheduler enforces). Returns -1, false if there is no such
// chunk - either every chunk is at least Scheduled, or an earlier chunk
// hasn't finished yet.
func (j *Job) NextOpenChunk() (int, bool) {
	for i, state := range j.ChunkState {
		switch state {
		case Done:
			continue
		case Open:
			return i, true
		default: // Scheduled: this chunk (and therefore all later ones) must wait
			return -1, false
		}
	}
	return -1, false
}

// AllChunksDone reports whether every chunk has reached Done, the
// precondition (alongside InitState == Done and no Dependencies) for the
// ATTRIBUTES phase to become schedulable.
func (j *Job) AllChunksDone() bool {
	for _, state := range j.ChunkState {
		if state != Done {
			return false
		}
	}
	return true
}

// Task is one pipeline-stage unit of work against a Job: a request that a
// reader or writer perform the work for one phase, carrying whatever
// bytes the reader produced for the writer to consume. Grounded on the
// original fastsync Task struct.
type Task struct {
	Kind       Kind
	Job        Handle
	ChunkIndex int
	Payload    []byte
}

// Kind identifies which phase a Task performs.
type Kind int

const (
	Init Kind = iota
	Chunk
	Attributes
)

func (k Kind) String() string {
	switch k {
	case Init:
		return "init"
	case Chunk:
		return "chunk"
	case Attributes:
		return "attributes"
	default:
		return "unknown"
	}
}
