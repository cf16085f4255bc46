//go:build unix

package stageexec_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"squish/internal/artifact"
	"squish/internal/classify"
	"squish/internal/logging"
	"squish/internal/plan"
	"squish/internal/stageexec"
	"squish/internal/testsupport"
)

func TestProcessRunnerExitCodes(t *testing.T) {
	dir := t.TempDir()
	script := testsupport.WriteScript(t, dir, "exit3", "echo noisy\nexit 3\n")

	completion, err := stageexec.ProcessRunner{Capture: true}.Run(context.Background(), []string{script})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if completion.ExitCode != 3 || string(completion.Output) != "noisy\n" {
		t.Fatalf("unexpected completion %+v", completion)
	}

	quiet, err := stageexec.ProcessRunner{}.Run(context.Background(), []string{script})
	if err != nil || len(quiet.Output) != 0 {
		t.Fatalf("expected discarded output, got %q, %v", quiet.Output, err)
	}

	if _, err := (stageexec.ProcessRunner{}).Run(context.Background(), []string{filepath.Join(dir, "absent")}); err == nil {
		t.Fatal("expected start error for missing binary")
	}
}

func TestProcessRunnerLogsRejectedPriority(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root may raise process priority")
	}
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	script := testsupport.WriteScript(t, t.TempDir(), "ok", "exit 0\n")

	runner := stageexec.ProcessRunner{Priority: -20, Logger: logger}
	completion, err := runner.Run(context.Background(), []string{script})
	if err != nil || completion.ExitCode != 0 {
		t.Fatalf("Run: %+v, %v", completion, err)
	}
	if !strings.Contains(buf.String(), "process priority not applied") {
		t.Fatalf("expected priority failure in log, got %q", buf.String())
	}
}

func TestProcessRunnerKillsOnCancel(t *testing.T) {
	script := testsupport.WriteScript(t, t.TempDir(), "sleeper", "sleep 30\n")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := (stageexec.ProcessRunner{}).Run(ctx, []string{script}); err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("process was not killed promptly")
	}
}

func TestExecutorWithRealTool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	bin := filepath.Join(testsupport.BaseDir(cfg), "bin")
	tool := testsupport.WriteScript(t, bin, "shrinker", "head -c 64 \"$1\" > \"$2\"\n")

	path := filepath.Join(testsupport.BaseDir(cfg), "data.png")
	testsupport.WriteFile(t, path, 4096)
	a := artifact.New(path, 4096, []classify.Kind{classify.PNG}, false)
	a.Kind = classify.PNG

	s := plan.StageSpec{Kind: classify.PNG, Name: "shrinker", Template: plan.MustTemplate(tool, "%INPUTFILE%", "%TMPOUTPUTFILE%")}
	res := stageexec.New(cfg, logging.NewNop()).Run(context.Background(), s, a)
	if res.Status != artifact.StatusAccepted || res.SizeAfter != 64 {
		t.Fatalf("unexpected result %+v", res)
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) != 64 {
		t.Fatalf("artifact not rewritten: %d bytes, %v", len(data), err)
	}
}
