//go:build windows || plan9 || js

package posix

import "os"

// fileStatus falls back to portable os.FileInfo fields only. Windows and
// plan9 have no uid/gid/atime concept this tool preserves; ModTime stands
// in for AccessTime. SetTimes is a no-op on these platforms
// (attrs_other.go), so the writer's timestamp comparison changes nothing
// here.
func fileStatus(fi os.FileInfo) (Status, error) {
	return Status{
		Mode:       fi.Mode(),
		Size:       fi.Size(),
		ModTime:    fi.ModTime(),
		AccessTime: fi.ModTime(),
	}, nil
}
