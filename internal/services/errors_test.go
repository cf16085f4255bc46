package services_test

import (
	"errors"
	"strings"
	"testing"

	"squish/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "stageexec", "spawn", "optipng failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"stageexec", "spawn", "optipng failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestRunFatal(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "preflight", "temp dir", "not writable", nil)
	if !services.RunFatal(cfgErr) {
		t.Fatal("expected configuration error to be run fatal")
	}
	toolErr := services.Wrap(services.ErrExternalTool, "stageexec", "run", "exit 1", nil)
	if services.RunFatal(toolErr) {
		t.Fatal("expected tool error to stay local to the artifact")
	}
	if services.RunFatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
}

func TestSummaryDropsMarker(t *testing.T) {
	err := services.Wrap(services.ErrTimeout, "stageexec", "wait", "", nil)
	if got := services.Summary(err); got != "stageexec: wait" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := services.Summary(nil); got != "" {
		t.Fatalf("expected empty summary for nil, got %q", got)
	}
}
