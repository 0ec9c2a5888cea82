package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.toSlogLevel(); got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_Ordering(t *testing.T) {
	if !(LevelDebug < LevelInfo && LevelInfo < LevelWarn && LevelWarn < LevelError) {
		t.Error("levels must order Debug < Info < Warn < Error")
	}
}

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	defer logger.Close()
	if logger.slog == nil {
		t.Fatal("logger.slog is nil")
	}
}

func TestNew_WithService(t *testing.T) {
	logger := New(Config{Service: "test-service", Quiet: true})
	defer logger.Close()
	if logger.config.Service != "test-service" {
		t.Errorf("Service = %v, want test-service", logger.config.Service)
	}
}

func TestNew_QuietMode(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()
	if logger.slog == nil {
		t.Error("logger.slog is nil in quiet mode")
	}
}

func TestNew_WithLogDir(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{LogDir: tmpDir, Service: "test", Quiet: true})
	defer logger.Close()

	if logger.file == nil {
		t.Fatal("logger.file is nil when LogDir specified")
	}
	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(files) == 0 {
		t.Error("no log file created in LogDir")
	}
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{LogDir: tmpDir, Quiet: true})
	defer logger.Close()

	files, _ := os.ReadDir(tmpDir)
	found := false
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "llmhive_") {
			found = true
		}
	}
	if !found {
		t.Error("expected log file with 'llmhive_' prefix")
	}
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	logger := New(Config{LogDir: "/root/nonexistent/deep/path/that/should/fail", Quiet: true})
	defer logger.Close()
	if logger.file != nil {
		t.Error("logger.file should be nil for an invalid path")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	defer logger.Close()
	if logger.config.Level != LevelInfo {
		t.Errorf("Default level = %v, want LevelInfo", logger.config.Level)
	}
	if logger.config.Service != "llmhive" {
		t.Errorf("Default service = %v, want llmhive", logger.config.Service)
	}
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	old := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = old }()

	fn()
	w.Close()

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLogger_LevelFiltering(t *testing.T) {
	out := captureStderr(t, func() {
		logger := New(Config{Level: LevelWarn, JSON: true})
		logger.Debug("debug")
		logger.Info("info")
		logger.Warn("warn")
		logger.Close()
	})
	if strings.Contains(out, "\"debug\"") || strings.Contains(out, "\"info\"") {
		t.Errorf("expected debug/info filtered out, got: %s", out)
	}
	if !strings.Contains(out, "warn") {
		t.Errorf("expected warn message, got: %s", out)
	}
}

func TestLogger_With(t *testing.T) {
	out := captureStderr(t, func() {
		logger := New(Config{JSON: true})
		child := logger.With("request_id", "abc123")
		child.Info("processing")
		logger.Close()
	})
	if !strings.Contains(out, "abc123") {
		t.Errorf("expected request_id in output, got: %s", out)
	}
}

func TestLogger_Slog(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()
	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
}

func TestLogger_Close_NoResources(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() with no file = %v, want nil", err)
	}
}

func TestLogger_Close_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	logger := New(Config{LogDir: tmpDir, Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

// setupTracedContext installs an in-memory span recorder as the
// active tracer provider and returns a context carrying one recording
// span, the way a request inside otelgin.Middleware would.
func setupTracedContext(t *testing.T) context.Context {
	t.Helper()
	provider := trace.NewTracerProvider(trace.WithSyncer(tracetest.NewInMemoryExporter()))
	ctx, span := provider.Tracer("logging_test").Start(context.Background(), "test-span")
	t.Cleanup(func() { span.End() })
	return ctx
}

func TestLogger_InfoContext_StampsTraceAndSpanID(t *testing.T) {
	ctx := setupTracedContext(t)

	out := captureStderr(t, func() {
		logger := New(Config{JSON: true})
		logger.InfoContext(ctx, "handled request")
		logger.Close()
	})

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &record); err != nil {
		t.Fatalf("unmarshal log line: %v\nline: %s", err, out)
	}
	if record["trace_id"] == nil || record["trace_id"] == "" {
		t.Errorf("expected trace_id attribute, got record: %v", record)
	}
	if record["span_id"] == nil || record["span_id"] == "" {
		t.Errorf("expected span_id attribute, got record: %v", record)
	}
}

func TestLogger_ContextMethods_NoSpanLeavesArgsUnchanged(t *testing.T) {
	out := captureStderr(t, func() {
		logger := New(Config{JSON: true})
		logger.WarnContext(context.Background(), "no span here")
		logger.Close()
	})
	if strings.Contains(out, "trace_id") {
		t.Errorf("expected no trace_id without an active span, got: %s", out)
	}
}

func TestLogger_DebugErrorContext(t *testing.T) {
	ctx := setupTracedContext(t)
	out := captureStderr(t, func() {
		logger := New(Config{Level: LevelDebug, JSON: true})
		logger.DebugContext(ctx, "debug with span")
		logger.ErrorContext(ctx, "error with span")
		logger.Close()
	})
	if strings.Count(out, "trace_id") != 2 {
		t.Errorf("expected trace_id on both records, got: %s", out)
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected Enabled(Debug) true when one handler accepts it")
	}
}

func TestMultiHandler_Enabled_NoneEnabled(t *testing.T) {
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected Enabled(Debug) false when no handler accepts it")
	}
}

func TestMultiHandler_FansOutToBothDestinations(t *testing.T) {
	var bufA, bufB bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&bufA, nil),
		slog.NewJSONHandler(&bufB, nil),
	}}
	logger := slog.New(h)
	logger.Info("fan out")

	if bufA.Len() == 0 || bufB.Len() == 0 {
		t.Error("expected both destinations to receive the record")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{slog.NewJSONHandler(&buf, nil)}}
	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")})
	slog.New(h2).Info("msg")
	if !strings.Contains(buf.String(), "\"k\":\"v\"") {
		t.Errorf("expected attr in output, got: %s", buf.String())
	}
}

func TestMultiHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{slog.NewJSONHandler(&buf, nil)}}
	h2 := h.WithGroup("grp")
	slog.New(h2).Info("msg", "k", "v")
	if !strings.Contains(buf.String(), "\"grp\"") {
		t.Errorf("expected group in output, got: %s", buf.String())
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(absolute) = %v, want unchanged", got)
	}
	if got := expandPath("relative/path"); got != "relative/path" {
		t.Errorf("expandPath(relative) = %v, want unchanged", got)
	}
	home, err := os.UserHomeDir()
	if err == nil {
		got := expandPath("~/logs")
		want := home + "/logs"
		if got != want {
			t.Errorf("expandPath(~) = %v, want %v", got, want)
		}
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			logger.Info("concurrent", "n", n)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
