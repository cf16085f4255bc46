package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"squish/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Jobs run sequentially and nothing is logged to disk unless an option says
// otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Optimize.Concurrency = 1
	cfgVal.Optimize.ProcessPriority = 0
	cfgVal.Optimize.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Safety.TrashDir = filepath.Join(base, "trash")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithLevel sets the optimization level.
func WithLevel(level int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Optimize.Level = level
	}
}

// WithConcurrency sets the job concurrency cap.
func WithConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Optimize.Concurrency = n
	}
}

// WithDebug keeps stage temp files.
func WithDebug() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Optimize.Debug = true
	}
}

// WithCustomStage appends a custom stage to the config.
func WithCustomStage(stage config.CustomStage) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.CustomStages = append(b.cfg.CustomStages, stage)
	}
}

// WithOnlyKinds disables every builtin kind except the listed ones.
func WithOnlyKinds(kinds ...string) ConfigOption {
	return func(b *configBuilder) {
		keep := make(map[string]bool, len(kinds))
		for _, k := range kinds {
			keep[k] = true
		}
		for _, k := range builtinKinds {
			b.cfg.Kinds[k] = keep[k]
		}
		for _, k := range kinds {
			b.cfg.Kinds[k] = true
		}
	}
}

var builtinKinds = []string{
	"png", "jpeg", "gif", "bmp", "ico", "tiff", "webp", "pdf", "office", "epub", "apk", "zip",
	"gzip", "exe", "elf", "flac", "mp3", "ogg", "mp4", "mkv", "svg", "xml", "html", "json",
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub exits 0 without touching its arguments.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		PrependPath(b.t, binDir)
	}
}

// PrependPath puts dir at the front of PATH for the rest of the test.
func PrependPath(t testing.TB, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Optimize.TempDir)
}
