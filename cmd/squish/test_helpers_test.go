package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"squish/internal/config"
	"squish/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	binDir     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("SQUISH_NTFY_TOPIC", "")

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
		binDir:     filepath.Join(base, "bin"),
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

// stubTool installs an executable shell script on PATH for the test.
func (e *cliTestEnv) stubTool(t *testing.T, name, body string) {
	t.Helper()
	testsupport.WriteScript(t, e.binDir, name, body)
	if !strings.HasPrefix(os.Getenv("PATH"), e.binDir) {
		testsupport.PrependPath(t, e.binDir)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func shrinkStage() config.CustomStage {
	return config.CustomStage{Kind: "dat", Name: "shrink", Args: []string{"shrink", "%INPUTFILE%", "%TMPOUTPUTFILE%"}}
}
