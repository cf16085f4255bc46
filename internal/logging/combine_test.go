package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestCombineCollapsesTrivialCases(t *testing.T) {
	if _, ok := Combine(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if Combine(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestCombineRespectsPerHandlerLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warn := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(Combine(debug, warn)).With("run", "r1")
	logger.Info("info line")
	logger.Warn("warn line")

	if !strings.Contains(debugBuf.String(), "info line") || !strings.Contains(debugBuf.String(), "warn line") {
		t.Fatalf("debug handler missed records: %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "info line") {
		t.Fatalf("warn handler received info record: %q", warnBuf.String())
	}
	if !strings.Contains(warnBuf.String(), "run=r1") {
		t.Fatalf("attrs not propagated: %q", warnBuf.String())
	}
	if !Combine(debug, warn).Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled through combined handler")
	}
}
