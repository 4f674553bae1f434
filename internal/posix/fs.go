package posix

import (
	"fmt"
	"os"
)

// Mkdir creates path as a directory with the given mode, grounded on the
// original writer's bare mkdir(2) call for a missing directory destination.
func Mkdir(path string, mode os.FileMode) error {
	if err := os.Mkdir(path, mode); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// RemoveAll recursively removes path, grounded on the original writer's
// use of std::filesystem::remove_all both to clear a type-mismatched
// destination and to prune directory entries absent at source.
func RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove all %s: %w", path, err)
	}
	return nil
}

// ReadDirNames lists the immediate child names of a directory, without
// stat-ing them; callers fan the names out to ParallelLstat.
func ReadDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dir %s: %w", path, err)
	}
	defer f.Close()
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}
	return names, nil
}

// CreateTruncate opens path for writing, creating it with mode if absent
// and truncating it to zero length otherwise - the destination-side half
// of the original writer's regular-file INIT branch.
func CreateTruncate(path string, mode os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// OpenWriteAt opens an existing file for positioned writes, used by the
// writer's CHUNK phase which never recreates or truncates an already
// INIT'd destination file.
func OpenWriteAt(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open for write %s: %w", path, err)
	}
	return f, nil
}

// OpenReadAt opens a source file for positioned reads during the reader's
// CHUNK phase.
func OpenReadAt(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open for read %s: %w", path, err)
	}
	return f, nil
}
