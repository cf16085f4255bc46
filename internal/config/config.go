package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Optimize contains the knobs that drive stage intensity and scheduling.
type Optimize struct {
	Level               int    `toml:"level"`
	Concurrency         int    `toml:"concurrency"`
	Debug               bool   `toml:"debug"`
	TempDir             string `toml:"temp_dir"`
	ProcessPriority     int    `toml:"process_priority"`
	StageTimeoutSeconds int    `toml:"stage_timeout_seconds"`
	AllowLossy          bool   `toml:"allow_lossy"`
}

// Filters contains semicolon separated substring masks.
type Filters struct {
	IncludeMask        string `toml:"include_mask"`
	ExcludeMask        string `toml:"exclude_mask"`
	DisabledPluginMask string `toml:"disabled_plugin_mask"`
}

// Safety contains the artifact lifecycle options applied around each pipeline run.
type Safety struct {
	TrashCopy      bool   `toml:"trash_copy"`
	BackupCopy     bool   `toml:"backup_copy"`
	KeepAttributes bool   `toml:"keep_attributes"`
	TrashDir       string `toml:"trash_dir"`
}

// Tuning contains tool specific switches that gate individual stages.
type Tuning struct {
	ExeUPX          bool   `toml:"exe_upx"`
	JPEGProgressive bool   `toml:"jpeg_progressive"`
	PDFProfile      string `toml:"pdf_profile"`
}

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// History controls the SQLite run history.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Notifications contains configuration for run completion signals.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Bell           bool   `toml:"bell"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// CustomStage declares an extra external tool appended to a kind's stage list.
type CustomStage struct {
	Kind      string   `toml:"kind"`
	Name      string   `toml:"name"`
	Args      []string `toml:"args"`
	ExitMin   int      `toml:"exit_min"`
	ExitMax   int      `toml:"exit_max"`
	ExitCodes []int    `toml:"exit_codes"`
}

// Config encapsulates all configuration values for squish.
//
// Configuration sections by subsystem:
//   - Optimize: level, concurrency, temp directory, priority, timeouts
//   - Filters: include/exclude filename masks and disabled tool masks
//   - Safety: trash/backup copies and attribute preservation
//   - Kinds: per-kind enable flags (missing kinds are enabled)
//   - Preserve: per-kind metadata preservation flags
//   - Tuning: tool specific switches
//   - Paths: state and log directories
//   - History: SQLite run history
//   - Notifications: ntfy push and terminal bell on completion
//   - Logging: log format and level
//   - CustomStages: user supplied tools
type Config struct {
	Optimize         Optimize        `toml:"optimize"`
	Filters          Filters         `toml:"filters"`
	Safety           Safety          `toml:"safety"`
	Kinds            map[string]bool `toml:"kinds"`
	Preserve         map[string]bool `toml:"preserve_metadata"`
	Tuning           Tuning          `toml:"tuning"`
	Paths            Paths           `toml:"paths"`
	History          History         `toml:"history"`
	Notifications    Notifications   `toml:"notifications"`
	Logging          Logging         `toml:"logging"`
	CustomStages     []CustomStage   `toml:"custom_stages"`
}

// Override mutates a decoded config before normalization; the CLI uses it for flags.
type Override func(*Config)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load locates, parses, and validates a configuration file. Overrides run after
// decoding and before normalization. The returned config has all path fields
// expanded and normalized.
func Load(path string, overrides ...Override) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath := DefaultConfigPath()
	projectPath, err := filepath.Abs("squish.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the temp, state, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Optimize.TempDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TempDir returns the directory used for per-stage working copies.
func (c *Config) TempDir() string {
	return c.Optimize.TempDir
}

// StageTimeout returns the per-stage timeout, or zero when stages may run unbounded.
func (c *Config) StageTimeout() time.Duration {
	if c.Optimize.StageTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Optimize.StageTimeoutSeconds) * time.Second
}

// KindEnabled reports whether stages for kind should run. Kinds absent from
// the [kinds] table are enabled.
func (c *Config) KindEnabled(kind string) bool {
	enabled, ok := c.Kinds[strings.ToLower(strings.TrimSpace(kind))]
	return !ok || enabled
}

// PreserveMetadata reports whether metadata must be kept for kind. Kinds absent
// from the [preserve_metadata] table do not preserve metadata.
func (c *Config) PreserveMetadata(kind string) bool {
	return c.Preserve[strings.ToLower(strings.TrimSpace(kind))]
}

// IncludeMasks returns the include filename masks.
func (c *Config) IncludeMasks() []string {
	return SplitMask(c.Filters.IncludeMask)
}

// ExcludeMasks returns the exclude filename masks.
func (c *Config) ExcludeMasks() []string {
	return SplitMask(c.Filters.ExcludeMask)
}

// DisabledPluginMasks returns the masks matched against rendered command lines.
func (c *Config) DisabledPluginMasks() []string {
	return SplitMask(c.Filters.DisabledPluginMask)
}

// LocksDir returns the directory holding per-artifact lock files.
func (c *Config) LocksDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// HistoryPath returns the SQLite history database path.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// SplitMask splits a semicolon separated mask into its non-empty alternatives.
func SplitMask(mask string) []string {
	if strings.TrimSpace(mask) == "" {
		return nil
	}
	parts := strings.Split(mask, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
