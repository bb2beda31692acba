package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"other": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")

	WithGroupID(WithRequestID(logger, "req-1"), "group-1").Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line should be JSON: %v", err)
	}
	if record["request_id"] != "req-1" {
		t.Errorf("expected request_id, got %v", record["request_id"])
	}
	if record["task_group_id"] != "group-1" {
		t.Errorf("expected task_group_id, got %v", record["task_group_id"])
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "text")

	logger.Info("skipped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Error("info should be filtered at WARN level")
	}
	if !strings.Contains(out, "msg=kept") {
		t.Errorf("expected text record, got %q", out)
	}
}

func TestFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Error("logger from context should be returned")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("default logger should be returned when context is empty")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RunStarted("job")
	m.ItemRecorded("job", "success")
	m.ItemRecorded("job", "success")
	m.ItemRecorded("job", "error")
	m.RunCompleted("job", time.Second)

	if got := testutil.ToFloat64(m.runsStarted.WithLabelValues("job")); got != 1 {
		t.Errorf("expected 1 started run, got %v", got)
	}
	if got := testutil.ToFloat64(m.itemsRecorded.WithLabelValues("job", "success")); got != 2 {
		t.Errorf("expected 2 success items, got %v", got)
	}
	if got := testutil.ToFloat64(m.itemsRecorded.WithLabelValues("job", "error")); got != 1 {
		t.Errorf("expected 1 error item, got %v", got)
	}
	if got := testutil.ToFloat64(m.runsCompleted.WithLabelValues("job")); got != 1 {
		t.Errorf("expected 1 completed run, got %v", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RunStarted("job")
	m.RunCompleted("job", time.Second)
	m.RunFailed("job", time.Second)
	m.ItemRecorded("job", "success")
}
