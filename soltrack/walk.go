package soltrack

import (
	"io/fs"
	"iter"
)

// WalkFiles lazily yields the paths of all regular files under root.
// Directories are descended into, everything else that is not a regular
// file (symlinks, sockets, devices) is skipped. On the first error the
// failing path and the error are yielded and the walk stops.
func WalkFiles(fsys fs.FS, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var failedPath string
		err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				failedPath = path
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(failedPath, err)
		}
	}
}
