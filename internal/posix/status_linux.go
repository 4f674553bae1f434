//go:build linux

package posix

import (
	"os"
	"syscall"
	"time"
)

// fileStatus extracts the owner and access-time fields the portable
// os.FileInfo doesn't carry, from the raw syscall.Stat_t Lstat already
// populated. Grounded on rclone's backend/local/stat_unix.go, split onto
// its own build-tagged file because the Stat_t field names (Atim here,
// Atimespec on the BSD family) aren't portable across the unix family.
func fileStatus(fi os.FileInfo) (Status, error) {
	raw, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return Status{}, nil
	}
	return Status{
		Ino:        raw.Ino,
		Mode:       fi.Mode(),
		Size:       fi.Size(),
		Uid:        raw.Uid,
		Gid:        raw.Gid,
		ModTime:    fi.ModTime(),
		AccessTime: time.Unix(int64(raw.Atim.Sec), int64(raw.Atim.Nsec)),
	}, nil
}
