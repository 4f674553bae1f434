//go:build !windows && !plan9 && !js

package posix

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// HaveLChmod reports whether Chmod on this platform actually changes the
// link rather than its target when path is a symlink. Linux's fchmodat
// rejects AT_SYMLINK_NOFOLLOW outright (ENOTSUP), so on Linux this is
// false and the scheduler's writer must never ask to chmod a symlink.
const HaveLChmod = haveLChmod

// SetTimes updates atime/mtime on path without following a trailing
// symlink, grounded on rclone's backend/local/lchtimes_unix.go.
func SetTimes(path string, atime, mtime time.Time) error {
	utimes := [2]unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, utimes[:], unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return fmt.Errorf("set times %s: %w", path, &os.PathError{Op: "utimensat", Path: path, Err: err})
	}
	return nil
}

// Chown changes ownership of path without following a trailing symlink.
func Chown(path string, uid, gid uint32) error {
	if err := unix.Lchown(path, int(uid), int(gid)); err != nil {
		return fmt.Errorf("chown %s: %w", path, &os.PathError{Op: "lchown", Path: path, Err: err})
	}
	return nil
}

// Chmod changes the mode of path. Where the platform can change a
// symlink's own mode (HaveLChmod == true) it does so without following a
// trailing symlink; otherwise it uses os.Chmod, which follows a symlink
// to its target. The caller (the writer's ATTRIBUTES phase) never calls
// this on a symlink, matching the original's "never chmod through a
// symlink" rule.
func Chmod(path string, mode os.FileMode) error {
	if !HaveLChmod {
		return os.Chmod(path, mode)
	}
	if err := unix.Fchmodat(unix.AT_FDCWD, path, syscallMode(mode), unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return fmt.Errorf("chmod %s: %w", path, &os.PathError{Op: "lchmod", Path: path, Err: err})
	}
	return nil
}

// syscallMode returns the syscall-specific mode bits from Go's portable
// mode bits. Borrowed from the unexported syscall helper of the same name.
func syscallMode(i os.FileMode) (o uint32) {
	o |= uint32(i.Perm())
	if i&os.ModeSetuid != 0 {
		o |= syscall.S_ISUID
	}
	if i&os.ModeSetgid != 0 {
		o |= syscall.S_ISGID
	}
	if i&os.ModeSticky != 0 {
		o |= syscall.S_ISVTX
	}
	return o
}
