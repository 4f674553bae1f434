//go:build !windows && !plan9 && !js

package posix

import (
	"errors"
	"os"
	"syscall"
)

func isCircularSymlinkError(err error) bool {
	if err == nil {
		return false
	}
	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		return false
	}
	errno, ok := pathErr.Err.(syscall.Errno)
	return ok && errno == syscall.ELOOP
}
