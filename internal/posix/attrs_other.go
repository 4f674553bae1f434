//go:build windows || plan9 || js

package posix

import (
	"os"
	"time"
)

// HaveLChmod is always false on these platforms: there is no way to
// change a symlink's own mode without following it.
const HaveLChmod = false

// SetTimes is a no-op here: these platforms have no symlink-safe
// utimensat equivalent wired up, matching rclone's lchtimes.go stub.
func SetTimes(path string, atime, mtime time.Time) error {
	return nil
}

// Chown is a no-op: no uid/gid concept is preserved on these platforms.
func Chown(path string, uid, gid uint32) error {
	return nil
}

// Chmod follows os.Chmod's ordinary (target-following) semantics; callers
// must not invoke it on a symlink, since HaveLChmod reports false.
func Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}
