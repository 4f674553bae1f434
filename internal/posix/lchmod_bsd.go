//go:build darwin || freebsd || netbsd || openbsd

package posix

// The BSD family's fchmodat honors AT_SYMLINK_NOFOLLOW, so Chmod can
// change a symlink's own mode bits here. Grounded on rclone's
// lchmod_unix.go, whose build tag excludes exactly this platform set's
// complement (windows, plan9, js, linux).
const haveLChmod = true
