package workflow

import (
	"io/fs"
	"os"
	"path/filepath"

	"squish/internal/stageexec"
)

// Expand replaces every directory in paths with the regular files below it,
// depth first in lexical order. Symbolic links found while walking are not
// followed, and leftover stage temp files are ignored. Paths that do not
// exist are kept so they surface as skipped reports.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			out = append(out, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == root {
					return walkErr
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if stageexec.IsTempName(d.Name()) {
				return nil
			}
			out = append(out, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
