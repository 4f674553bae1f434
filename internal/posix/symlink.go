package posix

import (
	"fmt"
	"os"
)

// maxSymlinkTarget caps the length of the target ReadLink returns: the
// 4096-byte PATH_MAX of the original reader's buffer, not counting its
// terminator.
const maxSymlinkTarget = 4096

// ReadLink resolves the target of the symlink at path, truncating to
// maxSymlinkTarget bytes. Grounded on the original reader's INIT-phase
// readlinkat call, re-expressed with os.Readlink since Go's wrapper
// already bounds and null-terminates correctly.
func ReadLink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("readlink %s: %w", path, err)
	}
	if len(target) > maxSymlinkTarget {
		target = target[:maxSymlinkTarget]
	}
	return target, nil
}

// Symlink creates a symlink at path pointing at target.
func Symlink(target, path string) error {
	if err := os.Symlink(target, path); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", path, target, err)
	}
	return nil
}

// IsCircularSymlink reports whether err was caused by a symlink loop,
// grounded on rclone's backend/local/symlink.go ELOOP check.
func IsCircularSymlink(err error) bool {
	return isCircularSymlinkError(err)
}
