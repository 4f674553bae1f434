//go:build !linux

package posix

import "os"

// Preallocate is a no-op on platforms without fallocate; the writer's
// positioned writes still produce a correctly sized file, just without
// the fragmentation-avoidance hint.
func Preallocate(size int64, out *os.File) error {
	return nil
}
