//go:build linux

package posix

// Linux's fchmodat rejects AT_SYMLINK_NOFOLLOW (ENOTSUP); chmod always
// follows the symlink target there, so Chmod must never be asked to act
// on a symlink on this platform. Grounded on rclone's lchmod.go, which
// carries the same caveat for linux alongside windows/plan9/js.
const haveLChmod = false
