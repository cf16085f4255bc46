package safety

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// attributes is what keep_attributes restores after a run. Replacing the file
// on write-back resets all of it.
type attributes struct {
	mode  fs.FileMode
	uid   int
	gid   int
	owned bool
	atime time.Time
	mtime time.Time
}

func snapshot(path string) (attributes, error) {
	info, err := os.Stat(path)
	if err != nil {
		return attributes{}, err
	}
	attrs := attributes{
		mode:  info.Mode().Perm(),
		mtime: info.ModTime(),
		atime: info.ModTime(),
	}
	platformSnapshot(path, &attrs)
	return attrs, nil
}

func (a attributes) restore(path string) error {
	var errs []error
	if err := os.Chmod(path, a.mode); err != nil {
		errs = append(errs, err)
	}
	if a.owned {
		if err := os.Lchown(path, a.uid, a.gid); err != nil && !errors.Is(err, fs.ErrPermission) {
			errs = append(errs, err)
		}
	}
	if err := os.Chtimes(path, a.atime, a.mtime); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
