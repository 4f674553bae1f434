//go:build windows || plan9 || js

package posix

import "strings"

func isCircularSymlinkError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "cannot be resolved by the system")
}
