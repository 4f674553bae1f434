//go:build linux

package posix

import (
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// fallocFlags is tried in order; some filesystems (notably ZFS) reject the
// plain KEEP_SIZE flag, so a second attempt punches a hole instead.
// Grounded on rclone's backend/local/preallocate_unix.go.
var (
	fallocFlags = [...]uint32{
		unix.FALLOC_FL_KEEP_SIZE,
		unix.FALLOC_FL_KEEP_SIZE | unix.FALLOC_FL_PUNCH_HOLE,
	}
	fallocFlagsIndex int32
)

// Preallocate best-effort reserves size bytes for out, so the writer's
// later positioned chunk writes don't fragment the destination file. A
// failure here is never fatal - the caller logs and proceeds regardless.
func Preallocate(size int64, out *os.File) error {
	if size <= 0 {
		return nil
	}
	index := atomic.LoadInt32(&fallocFlagsIndex)
	for {
		if index >= int32(len(fallocFlags)) {
			return nil
		}
		err := unix.Fallocate(int(out.Fd()), fallocFlags[index], 0, size)
		if err == unix.ENOTSUP {
			index++
			atomic.StoreInt32(&fallocFlagsIndex, index)
			continue
		}
		return err
	}
}
