// Package staging sweeps scratch files that stage runs left in the temp
// directory, for example after a crash or a debug run.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"squish/internal/logging"
	"squish/internal/stageexec"
)

// StaleAfter is the age past which a scratch file cannot belong to a live
// stage of a normal run.
const StaleAfter = time.Hour

// CleanStaleResult contains the outcome of a stale scratch cleanup.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes scratch entries in tempDir older than maxAge. A zero
// maxAge removes every scratch entry. Files that do not follow the scratch
// naming scheme are never touched.
func CleanStale(ctx context.Context, tempDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	entries, err := List(tempDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: tempDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if maxAge > 0 && !entry.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(entry.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: entry.Path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale scratch file",
					logging.String("path", entry.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "scratch_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
		if logger != nil {
			logger.Info("removed stale scratch file",
				logging.String("path", entry.Path),
				logging.Duration("age", time.Since(entry.ModTime)),
				logging.String(logging.FieldEventType, "scratch_cleanup"),
			)
		}
	}
	return result
}

// Entry describes one scratch file.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns the scratch entries of tempDir. A missing directory yields
// no entries.
func List(tempDir string) ([]Entry, error) {
	tempDir = strings.TrimSpace(tempDir)
	if tempDir == "" {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, entry := range dirEntries {
		if !stageexec.IsTempName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:    entry.Name(),
			Path:    filepath.Join(tempDir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return out, nil
}
