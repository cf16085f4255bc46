package safety

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"squish/internal/fileutil"
)

const trashInfoLayout = "2006-01-02T15:04:05"

// Trash is a freedesktop.org style trash directory with files/ and info/
// subdirectories.
type Trash struct {
	Dir string
	now func() time.Time
}

// NewTrash returns a trash rooted at dir.
func NewTrash(dir string) *Trash {
	return &Trash{Dir: dir, now: time.Now}
}

// FilesDir holds the trashed copies.
func (t *Trash) FilesDir() string { return filepath.Join(t.Dir, "files") }

// InfoDir holds the .trashinfo records.
func (t *Trash) InfoDir() string { return filepath.Join(t.Dir, "info") }

// Put stores a copy of path in the trash and returns the copy's location. The
// original is left in place.
func (t *Trash) Put(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for _, dir := range []string{t.FilesDir(), t.InfoDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create trash dir: %w", err)
		}
	}

	name, info, err := t.reserve(filepath.Base(abs))
	if err != nil {
		return "", err
	}
	record := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapeTrashPath(abs), t.now().Format(trashInfoLayout))
	if _, err := info.WriteString(record); err != nil {
		info.Close()
		os.Remove(info.Name())
		return "", fmt.Errorf("write trash info: %w", err)
	}
	if err := info.Close(); err != nil {
		os.Remove(info.Name())
		return "", fmt.Errorf("close trash info: %w", err)
	}

	target := filepath.Join(t.FilesDir(), name)
	partial := filepath.Join(t.FilesDir(), ".partial-"+name)
	if err := fileutil.CopyFileVerified(abs, partial); err != nil {
		os.Remove(partial)
		os.Remove(info.Name())
		return "", fmt.Errorf("copy into trash: %w", err)
	}
	if err := os.Rename(partial, target); err != nil {
		os.Remove(partial)
		os.Remove(info.Name())
		return "", fmt.Errorf("move into trash: %w", err)
	}
	return target, nil
}

// reserve claims a unique trash name by exclusively creating its info file.
func (t *Trash) reserve(base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; i < 10000; i++ {
		name := base
		if i > 1 {
			name = stem + "." + strconv.Itoa(i) + ext
		}
		if _, err := os.Lstat(filepath.Join(t.FilesDir(), name)); err == nil {
			continue
		}
		f, err := os.OpenFile(filepath.Join(t.InfoDir(), name+".trashinfo"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("create trash info: %w", err)
		}
		return name, f, nil
	}
	return "", nil, fmt.Errorf("no free trash name for %s", base)
}

func escapeTrashPath(abs string) string {
	parts := strings.Split(abs, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
