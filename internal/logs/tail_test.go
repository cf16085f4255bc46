package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"squish/internal/logs"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "squish.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a", "b", "c")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, result.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if result.Offset != 6 {
		t.Fatalf("offset = %d, want 6", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "absent.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result for missing file: %+v", result)
	}
}

func TestTailFiltersByRun(t *testing.T) {
	path := writeLog(t,
		`{"ts":"2026-01-02T03:04:05Z","level":"info","msg":"run started","run_id":"r1"}`,
		`{"ts":"2026-01-02T03:04:06Z","level":"warn","msg":"stage failed","run_id":"r2","artifact":"/data/a.png"}`,
		`{"ts":"2026-01-02T03:04:07Z","level":"info","msg":"stage accepted","run_id":"r2","artifact":"/data/b.png"}`,
		`not json`,
	)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: -1,
		Limit:  10,
		Filter: logs.Filter{RunID: "r2"},
	})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines for run r2, got %#v", result.Lines)
	}

	result, err = logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: 0,
		Filter: logs.Filter{MinLevel: "warn", Artifact: "a.png"},
	})
	if err != nil {
		t.Fatalf("tail from start: %v", err)
	}
	if len(result.Lines) != 1 || !strings.Contains(result.Lines[0], "stage failed") {
		t.Fatalf("unexpected filtered lines: %#v", result.Lines)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", result.Lines)
	}

	done := make(chan struct{})
	go func(offset int64) {
		defer close(done)
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Errorf("unexpected follow lines: %#v", res.Lines)
		}
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}

func TestEntryFormat(t *testing.T) {
	entry := logs.ParseEntry(`{"ts":"2026-01-02T03:04:05Z","level":"warn","msg":"stage failed","stage":"png/optipng","detail":"exit 3"}`)
	want := `2026-01-02T03:04:05Z WARN  stage failed detail="exit 3" stage=png/optipng`
	if got := entry.Format(); got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}

	plain := logs.ParseEntry("plain text")
	if plain.Format() != "plain text" {
		t.Fatalf("plain line formatted as %q", plain.Format())
	}
}
