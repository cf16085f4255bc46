package config

import (
	"errors"
	"fmt"
	"strings"
)

var pdfProfiles = map[string]struct{}{
	"":         {},
	"screen":   {},
	"ebook":    {},
	"printer":  {},
	"prepress": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOptimize(); err != nil {
		return err
	}
	if err := c.validateTuning(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateCustomStages(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOptimize() error {
	if c.Optimize.Level < 1 || c.Optimize.Level > 9 {
		return errors.New("optimize.level must be between 1 and 9")
	}
	if c.Optimize.Concurrency < 1 {
		return errors.New("optimize.concurrency must be positive (0 selects the CPU count)")
	}
	if c.Optimize.ProcessPriority < -20 || c.Optimize.ProcessPriority > 19 {
		return errors.New("optimize.process_priority must be between -20 and 19")
	}
	if c.Optimize.StageTimeoutSeconds < 0 {
		return errors.New("optimize.stage_timeout_seconds must be >= 0")
	}
	if strings.TrimSpace(c.Optimize.TempDir) == "" {
		return errors.New("optimize.temp_dir must be set")
	}
	return nil
}

func (c *Config) validateTuning() error {
	if _, ok := pdfProfiles[c.Tuning.PDFProfile]; !ok {
		return fmt.Errorf("tuning.pdf_profile: unsupported value %q", c.Tuning.PDFProfile)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateCustomStages() error {
	for i, stage := range c.CustomStages {
		key := fmt.Sprintf("custom_stages[%d]", i)
		if stage.Kind == "" {
			return fmt.Errorf("%s.kind must be set", key)
		}
		if stage.Name == "" {
			return fmt.Errorf("%s.name must be set", key)
		}
		if len(stage.Args) == 0 || strings.TrimSpace(stage.Args[0]) == "" {
			return fmt.Errorf("%s.args must start with an executable", key)
		}
		joined := strings.Join(stage.Args, " ")
		if !strings.Contains(joined, "%INPUTFILE%") && !strings.Contains(joined, "%TMPINPUTFILE%") {
			return fmt.Errorf("%s.args must reference %%INPUTFILE%% or %%TMPINPUTFILE%%", key)
		}
	}
	return nil
}
