// Package posix wraps the small set of POSIX system calls the synchronizer
// needs to treat the filesystem as an effectful capability: lstat, readlink,
// symlink-safe timestamp/ownership/mode changes, and best-effort space
// preallocation. Every exported function here is a thin, errors-wrapped
// veneer over golang.org/x/sys/unix (or the standard library where that's
// enough); callers never reach for syscall or unix directly.
package posix

import (
	"fmt"
	"os"
	"time"
)

// Status is the subset of POSIX stat(2) fields the synchronizer compares
// between source and destination. Exists is true only when Lstat found an
// entry at the path. A missing path gives Exists == false with a nil
// error; any other Lstat failure gives Exists == false with a non-nil
// error.
type Status struct {
	Exists     bool
	Ino        uint64
	Mode       os.FileMode
	Size       int64
	Uid        uint32
	Gid        uint32
	ModTime    time.Time
	AccessTime time.Time
}

// IsRegular, IsDir and IsSymlink classify a Status the way the scheduler
// needs to: by the type bits of Mode, ignoring permission bits.
func (s Status) IsRegular() bool { return s.Mode&os.ModeType == 0 }
func (s Status) IsDir() bool     { return s.Mode&os.ModeDir != 0 }
func (s Status) IsSymlink() bool { return s.Mode&os.ModeSymlink != 0 }

// Lstat stats path without following a trailing symlink. A missing path is
// not an error: it is reported as a zero Status (Exists == false) so
// callers can tell "doesn't exist yet" from "couldn't be read".
func Lstat(path string) (Status, error) {
	fi, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("lstat %s: %w", path, err)
	}
	st, err := fileStatus(fi)
	if err != nil {
		return Status{}, fmt.Errorf("lstat %s: %w", path, err)
	}
	st.Exists = true
	return st, nil
}

// SameAttrs reports whether two Status values agree closely enough that a
// regular file or symlink at dest can be considered already synchronized
// with source, per the scheduler's short-circuit rule: size, whole-second
// mtime, uid and gid must all match.
func SameAttrs(source, dest Status) bool {
	if !dest.Exists {
		return false
	}
	return source.Size == dest.Size &&
		source.ModTime.Unix() == dest.ModTime.Unix() &&
		source.Uid == dest.Uid &&
		source.Gid == dest.Gid
}
