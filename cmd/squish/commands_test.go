package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"squish/internal/config"
	"squish/internal/testsupport"
)

const shrinkScript = "head -c 100 \"$1\" > \"$2\"\n"

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigPathAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath)

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[optimize]")
	requireContains(t, out, env.cfg.Optimize.TempDir)
}

func TestInvalidConfigFailsBeforeCommandRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[optimize]\nlevel = 42\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"plan"}, path)
	if err == nil {
		t.Fatal("expected invalid level to fail")
	}
	requireContains(t, err.Error(), "optimize.level")
}

func TestRunOptimizesFilesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithOnlyKinds("dat"),
		testsupport.WithCustomStage(shrinkStage()),
	)
	env.stubTool(t, "shrink", shrinkScript)

	dir := filepath.Join(env.baseDir, "input")
	testsupport.WriteFile(t, filepath.Join(dir, "a.dat"), 4096)
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "b.dat"), 2048)

	out, stderr, err := runCLI(t, []string{"run", "--json", dir}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v (stderr %s)", err, stderr)
	}
	requireContains(t, stderr, "a.dat")

	var doc struct {
		Summary struct {
			Files          int   `json:"files"`
			Completed      int   `json:"completed"`
			Improved       int   `json:"improved"`
			OriginalBytes  int64 `json:"original_bytes"`
			OptimizedBytes int64 `json:"optimized_bytes"`
		} `json:"summary"`
		Files []struct {
			InputFile     string `json:"input_file"`
			Kind          string `json:"kind"`
			OptimizedSize int64  `json:"optimized_size"`
		} `json:"files"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode run output: %v\n%s", err, out)
	}
	if doc.Summary.Files != 2 || doc.Summary.Completed != 2 || doc.Summary.Improved != 2 {
		t.Fatalf("unexpected summary: %+v", doc.Summary)
	}
	if doc.Summary.OriginalBytes != 6144 || doc.Summary.OptimizedBytes != 200 {
		t.Fatalf("unexpected byte totals: %+v", doc.Summary)
	}
	for _, f := range doc.Files {
		if f.Kind != "dat" || f.OptimizedSize != 100 {
			t.Fatalf("unexpected file report: %+v", f)
		}
		if got := testsupport.FileSize(t, f.InputFile); got != 100 {
			t.Fatalf("%s size = %d, want 100", f.InputFile, got)
		}
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "All runs: 2 files")

	out, _, err = runCLI(t, []string{"logs", "-n", "200"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "run completed")
	requireContains(t, out, "run_id=")
}

func TestRunTableMarkdownAndExcludeMask(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithOnlyKinds("dat"),
		testsupport.WithCustomStage(shrinkStage()),
	)
	env.stubTool(t, "shrink", shrinkScript)

	kept := filepath.Join(env.baseDir, "keep.dat")
	draft := filepath.Join(env.baseDir, "draft-notes.dat")
	testsupport.WriteFile(t, kept, 1024)
	testsupport.WriteFile(t, draft, 1024)
	markdownPath := filepath.Join(env.baseDir, "report.md")

	out, _, err := runCLI(t, []string{
		"run", "-q", "--no-history", "--exclude", "draft", "--markdown", markdownPath, kept, draft,
	}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "keep.dat")
	requireContains(t, out, "excluded by mask draft")
	requireContains(t, out, "2 files")

	if got := testsupport.FileSize(t, draft); got != 1024 {
		t.Fatalf("excluded file changed size: %d", got)
	}
	data, err := os.ReadFile(markdownPath)
	if err != nil {
		t.Fatalf("read markdown report: %v", err)
	}
	requireContains(t, string(data), "squish report")

	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no history database with --no-history, stat err = %v", err)
	}
}

func TestRunRequiresPaths(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected run without paths to fail")
	}
}

func TestPlanCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCustomStage(shrinkStage()))

	out, _, err := runCLI(t, []string{"plan", "dat"}, env.configPath)
	if err != nil {
		t.Fatalf("plan dat: %v", err)
	}
	requireContains(t, out, "shrink %INPUTFILE% %TMPOUTPUTFILE%")

	out, _, err = runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "png")
	requireContains(t, out, "jpeg")

	if _, _, err := runCLI(t, []string{"plan", "nosuchkind"}, env.configPath); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestClassifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	png := filepath.Join(env.baseDir, "picture.bin")
	if err := os.WriteFile(png, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}

	out, _, err := runCLI(t, []string{"classify", png}, env.configPath)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "picture.bin")
	requireContains(t, out, "png")
}

func TestToolsCommandReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithOnlyKinds("dat"),
		testsupport.WithCustomStage(shrinkStage()),
		testsupport.WithCustomStage(config.CustomStage{
			Kind: "dat",
			Name: "absent",
			Args: []string{"squish-test-absent-tool", "%INPUTFILE%"},
		}),
	)
	env.stubTool(t, "shrink", shrinkScript)

	out, _, err := runCLI(t, []string{"tools"}, env.configPath)
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	requireContains(t, out, "shrink")
	requireContains(t, out, "dat/shrink")
	requireContains(t, out, "1 tools missing")

	out, _, err = runCLI(t, []string{"tools", "--missing"}, env.configPath)
	if err != nil {
		t.Fatalf("tools --missing: %v", err)
	}
	requireContains(t, out, "squish-test-absent-tool")
}

func TestCleanCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	tempDir := env.cfg.Optimize.TempDir
	stale := filepath.Join(tempDir, "squish_000000001_old.dat")
	fresh := filepath.Join(tempDir, "squish_000000002_new.dat")
	foreign := filepath.Join(tempDir, "keep-me.txt")
	for _, path := range []string{stale, fresh, foreign} {
		testsupport.WriteFile(t, path, 16)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, _, err := runCLI(t, []string{"clean", "--list"}, env.configPath)
	if err != nil {
		t.Fatalf("clean --list: %v", err)
	}
	requireContains(t, out, "squish_000000001_old.dat")

	out, _, err = runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 1 temporary files")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale scratch file still present: %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh scratch file removed: %v", err)
	}

	if _, _, err := runCLI(t, []string{"clean", "--all"}, env.configPath); err != nil {
		t.Fatalf("clean --all: %v", err)
	}
	if _, err := os.Stat(fresh); !os.IsNotExist(err) {
		t.Fatalf("clean --all left %s: %v", fresh, err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("non-scratch file removed: %v", err)
	}
}

func TestHistoryEmptyAndTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	out, _, err = runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications not configured")
}
