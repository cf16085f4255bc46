package workflow_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"squish/internal/artifact"
	"squish/internal/logging"
	"squish/internal/notifications"
	"squish/internal/testsupport"
	"squish/internal/workflow"
)

type stubNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	last   notifications.Payload
}

func (s *stubNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.last = payload
	return nil
}

// gate holds each job until released so tests can observe the running set.
type gate struct {
	release chan struct{}
}

func (g *gate) Process(ctx context.Context, path string) artifact.Report {
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return artifact.Report{InputFile: path, Outcome: artifact.OutcomeCompleted, OriginalSize: 10, OptimizedSize: 8}
}

type runningTracker struct {
	mu      sync.Mutex
	running int
	peak    int
	started chan string
	states  map[string][]workflow.JobState
}

func newTracker() *runningTracker {
	return &runningTracker{started: make(chan string, 16), states: make(map[string][]workflow.JobState)}
}

func (r *runningTracker) observe(job workflow.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[job.Path] = append(r.states[job.Path], job.State)
	switch job.State {
	case workflow.JobRunning:
		r.running++
		r.peak = max(r.peak, r.running)
		r.started <- job.Path
	case workflow.JobDone:
		if len(r.states[job.Path]) > 1 && r.states[job.Path][len(r.states[job.Path])-2] == workflow.JobRunning {
			r.running--
		}
	}
}

func inputs(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("/virtual/file-%d.png", i)
	}
	return paths
}

func runCapped(t *testing.T, concurrency, jobs int) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(concurrency))
	tracker := newTracker()
	g := &gate{release: make(chan struct{})}
	sched := workflow.NewScheduler(cfg, g, logging.NewNop(), workflow.WithObserver(tracker.observe))

	paths := inputs(jobs)
	done := make(chan []artifact.Report, 1)
	go func() {
		reports, err := sched.Run(context.Background(), paths)
		if err != nil {
			t.Errorf("run: %v", err)
		}
		done <- reports
	}()

	for i := 0; i < concurrency; i++ {
		select {
		case <-tracker.started:
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of %d jobs started", i, concurrency)
		}
	}
	tracker.mu.Lock()
	if tracker.running != concurrency {
		t.Fatalf("expected %d running jobs, got %d", concurrency, tracker.running)
	}
	tracker.mu.Unlock()

	close(g.release)
	var reports []artifact.Report
	select {
	case reports = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not finish")
	}

	if tracker.peak > concurrency {
		t.Fatalf("peak running %d exceeds cap %d", tracker.peak, concurrency)
	}
	got := make([]string, len(reports))
	for i, r := range reports {
		got[i] = r.InputFile
	}
	if diff := cmp.Diff(paths, got); diff != "" {
		t.Fatalf("report order mismatch (-want +got):\n%s", diff)
	}
	want := []workflow.JobState{workflow.JobQueued, workflow.JobRunning, workflow.JobDone}
	for _, p := range paths {
		if diff := cmp.Diff(want, tracker.states[p]); diff != "" {
			t.Fatalf("state transitions for %s (-want +got):\n%s", p, diff)
		}
	}
}

func TestSchedulerCapTwoOfFive(t *testing.T) {
	runCapped(t, 2, 5)
}

func TestSchedulerCapThreeOfFive(t *testing.T) {
	runCapped(t, 3, 5)
}

func TestSequentialRunPreservesOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var mu sync.Mutex
	var order []string
	proc := workflow.ProcessorFunc(func(_ context.Context, path string) artifact.Report {
		mu.Lock()
		order = append(order, path)
		mu.Unlock()
		return artifact.Report{InputFile: path, Outcome: artifact.OutcomeCompleted}
	})
	paths := inputs(4)
	reports, err := workflow.NewScheduler(cfg, proc, logging.NewNop()).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff(paths, order); diff != "" {
		t.Fatalf("execution order mismatch (-want +got):\n%s", diff)
	}
	if len(reports) != 4 {
		t.Fatalf("expected 4 reports, got %d", len(reports))
	}
}

func TestCancelledRunSkipsQueuedJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	proc := workflow.ProcessorFunc(func(_ context.Context, path string) artifact.Report {
		calls++
		cancel()
		return artifact.Report{InputFile: path, Outcome: artifact.OutcomeCompleted}
	})
	reports, err := workflow.NewScheduler(cfg, proc, logging.NewNop()).Run(ctx, inputs(3))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one job to run, got %d", calls)
	}
	for _, r := range reports[1:] {
		if r.Status != artifact.SkippedStatus || r.Detail != "cancelled" {
			t.Fatalf("expected cancelled skip, got %+v", r)
		}
	}
}

func TestJobPanicIsContainedAndNotified(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(2))
	notifier := &stubNotifier{}
	proc := workflow.ProcessorFunc(func(_ context.Context, path string) artifact.Report {
		if filepath.Base(path) == "file-1.png" {
			panic("tool wrapper exploded")
		}
		return artifact.Report{InputFile: path, Outcome: artifact.OutcomeCompleted, OriginalSize: 100, OptimizedSize: 60}
	})
	reports, err := workflow.NewScheduler(cfg, proc, logging.NewNop(), workflow.WithNotifier(notifier)).Run(context.Background(), inputs(3))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if reports[1].Outcome != artifact.OutcomeFailed {
		t.Fatalf("expected failed report for panicking job, got %+v", reports[1])
	}
	if reports[0].Outcome != artifact.OutcomeCompleted || reports[2].Outcome != artifact.OutcomeCompleted {
		t.Fatalf("sibling jobs affected: %+v", reports)
	}
	want := []notifications.Event{notifications.EventRunStarted, notifications.EventRunCompleted}
	if diff := cmp.Diff(want, notifier.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if notifier.last["failed"] != 1 || notifier.last["processed"] != 2 || notifier.last["saved"] != int64(80) {
		t.Fatalf("unexpected completion payload %v", notifier.last)
	}
}

func TestExpandWalksDirectoriesLexically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b/2.png", "a.png", "b/1.png", "c/d/3.png", "squish_000000001_a.png"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 10)
	}
	outside := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(outside, "x.png"), 10)
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	single := filepath.Join(t.TempDir(), "single.png")
	got, err := workflow.Expand([]string{dir, single})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b", "1.png"),
		filepath.Join(dir, "b", "2.png"),
		filepath.Join(dir, "c", "d", "3.png"),
		single,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expand mismatch (-want +got):\n%s", diff)
	}
}
