package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

func (c *Config) normalize() error {
	if err := c.normalizeOptimize(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSafety(); err != nil {
		return err
	}
	c.normalizeKinds()
	c.normalizeFilters()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeCustomStages()
	return nil
}

func (c *Config) normalizeOptimize() error {
	if c.Optimize.Concurrency == 0 {
		c.Optimize.Concurrency = runtime.NumCPU()
	}
	if value, ok := os.LookupEnv("SQUISH_TEMP_DIR"); ok && strings.TrimSpace(c.Optimize.TempDir) == "" {
		c.Optimize.TempDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Optimize.TempDir) == "" {
		c.Optimize.TempDir = filepath.Join(os.TempDir(), tempDirName)
	}
	var err error
	if c.Optimize.TempDir, err = expandPath(c.Optimize.TempDir); err != nil {
		return fmt.Errorf("optimize.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = filepath.Join(xdg.DataHome, appName)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSafety() error {
	var err error
	if strings.TrimSpace(c.Safety.TrashDir) == "" {
		c.Safety.TrashDir = filepath.Join(xdg.DataHome, "Trash")
	}
	if c.Safety.TrashDir, err = expandPath(c.Safety.TrashDir); err != nil {
		return fmt.Errorf("safety.trash_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeKinds() {
	c.Kinds = lowerKeys(c.Kinds)
	c.Preserve = lowerKeys(c.Preserve)
}

func (c *Config) normalizeFilters() {
	c.Filters.IncludeMask = strings.TrimSpace(c.Filters.IncludeMask)
	c.Filters.ExcludeMask = strings.TrimSpace(c.Filters.ExcludeMask)
	c.Filters.DisabledPluginMask = strings.TrimSpace(c.Filters.DisabledPluginMask)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("SQUISH_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Optimize.Debug && c.Logging.Level != "debug" {
		c.Logging.Level = "debug"
	}
}

func (c *Config) normalizeCustomStages() {
	c.Tuning.PDFProfile = strings.ToLower(strings.TrimSpace(c.Tuning.PDFProfile))
	for i := range c.CustomStages {
		stage := &c.CustomStages[i]
		stage.Kind = strings.ToLower(strings.TrimSpace(stage.Kind))
		stage.Name = strings.TrimSpace(stage.Name)
		if stage.ExitMax < stage.ExitMin {
			stage.ExitMax = stage.ExitMin
		}
	}
}

func lowerKeys(values map[string]bool) map[string]bool {
	out := make(map[string]bool, len(values))
	for key, value := range values {
		out[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return out
}
