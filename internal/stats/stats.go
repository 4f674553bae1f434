// Package stats accounts bytes transferred, errors, and skipped entries
// across a run, and renders a final summary. Grounded on the legacy
// swiftsync accounting.go Stats type that this lineage's own predecessor
// used: a sync.RWMutex-guarded counter struct with a String() renderer,
// generalized from rclone's transfer accounting to this tool's narrower
// three counters (bytes, errors, skipped).
package stats

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"
)

// Stats accumulates counters for one run. The zero value is not usable;
// construct with New.
type Stats struct {
	lock    sync.RWMutex
	bytes   int64
	errors  int64
	skipped int64
	start   time.Time
}

// New returns an initialized Stats with its clock started.
func New() *Stats {
	return &Stats{start: time.Now()}
}

// AddBytes records n bytes successfully transferred in a chunk write.
func (s *Stats) AddBytes(n int64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.bytes += n
}

// AddError records that a job finished its ATTRIBUTES phase with at
// least one error flag set.
func (s *Stats) AddError() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.errors++
}

// AddSkipped records a job short-circuited after INIT because the
// destination already matched the source.
func (s *Stats) AddSkipped() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.skipped++
}

// Bytes returns the total bytes recorded so far.
func (s *Stats) Bytes() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.bytes
}

// Errors returns the number of jobs that finished with at least one
// error flag set.
func (s *Stats) Errors() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.errors
}

// Skipped returns the number of jobs short-circuited because the
// destination already matched the source.
func (s *Stats) Skipped() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.skipped
}

// String renders the final summary line printed at the end of a run.
func (s *Stats) String() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	elapsed := time.Since(s.start)
	seconds := elapsed.Seconds()
	speed := 0.0
	if seconds > 0 {
		speed = float64(s.bytes) / 1024 / seconds
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `
Transferred:   %10d Bytes (%7.2f kByte/s)
Errors:        %10d
Skipped:       %10d
Elapsed time:  %v
`,
		s.bytes, speed,
		s.errors,
		s.skipped,
		elapsed)
	return buf.String()
}

// Log writes the summary to the standard logger.
func (s *Stats) Log() {
	log.Printf("%v\n", s)
}
