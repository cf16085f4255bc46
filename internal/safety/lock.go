package safety

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"squish/internal/textutil"
)

// lockPath names the lock file for artifact. The hash keeps two files with
// the same base name in different directories apart.
func lockPath(dir, artifact string) string {
	abs, err := filepath.Abs(artifact)
	if err != nil {
		abs = artifact
	}
	sum := sha1.Sum([]byte(abs))
	token := textutil.SanitizeToken(filepath.Base(abs))
	if len(token) > 48 {
		token = token[:48]
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.lock", token, hex.EncodeToString(sum[:6])))
}

// tryLock takes the per-artifact lock without blocking. A nil lock with a nil
// error means another process holds it.
func tryLock(dir, artifact string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(lockPath(dir, artifact))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return lock, nil
}
