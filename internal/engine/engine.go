// Package engine wires the bounded queues, the reader and writer pools,
// and the scheduler into one runnable pipeline, and owns its startup and
// cooperative shutdown sequencing. Grounded on the original fastsync
// engine's ThreadedModule-based orchestration in main.cpp: start every
// worker, run the scheduler to completion, then close queues in pipeline
// order and join each pool before the next queue closes.
package engine

import (
	"context"
	"fmt"

	"github.com/ncw/fsync/internal/posix"
	"github.com/ncw/fsync/internal/queue"
	"github.com/ncw/fsync/internal/reader"
	"github.com/ncw/fsync/internal/scheduler"
	"github.com/ncw/fsync/internal/stats"
	"github.com/ncw/fsync/internal/writer"
)

// Config holds the tunables the CLI exposes.
type Config struct {
	Readers   int
	Writers   int
	ChunkSize int64
}

// DefaultConfig matches the CLI's documented positional defaults.
func DefaultConfig() Config {
	return Config{Readers: 1, Writers: 8, ChunkSize: 64 * 1024 * 1024}
}

// Engine runs one synchronization of source into dest.
type Engine struct {
	cfg   Config
	stats *stats.Stats
}

// New builds an Engine for cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, stats: stats.New()}
}

// Stats returns the accounting counters; valid to read after Run returns.
func (e *Engine) Stats() *stats.Stats { return e.stats }

// Run synchronizes dest to match source, starting the reader and writer
// pools, driving the scheduler to completion, and then shutting the
// pipeline down in order: close the open queue so readers drain and
// exit, join them, close the read queue so writers drain and exit, join
// them. ctx bounds the run at goroutine start/stop boundaries only: it is
// checked before the pools are started and once per completion cycle in
// the scheduler loop, never inside a blocked queue Pop/Push or a
// mid-flight chunk read/write. Run itself only returns a non-nil error
// for a setup failure or for ctx's own error; per-entry errors are
// recorded in Stats and never surface here.
func (e *Engine) Run(ctx context.Context, sourcePath, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	capacity := 2 * max(e.cfg.Readers, e.cfg.Writers)
	open := queue.New(capacity)
	read := queue.New(capacity)
	written := queue.New(capacity)

	statPool := posix.NewPool(e.cfg.Readers * 4)
	defer statPool.Close()

	sched := scheduler.New(open, read, written, statPool, e.stats)
	sched.SetChunkSize(e.cfg.ChunkSize)

	readers := reader.New(sched, open, read, e.cfg.ChunkSize)
	writers := writer.New(sched, read, written, e.cfg.ChunkSize)

	readers.Start(e.cfg.Readers)
	writers.Start(e.cfg.Writers)

	runErr := sched.Run(ctx, sourcePath, destPath)

	open.Close()
	readers.Wait()
	read.Close()
	writers.Wait()

	if runErr != nil {
		return fmt.Errorf("scheduler: %w", runErr)
	}
	return nil
}
