package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cratedig/internal/config"
	"cratedig/internal/logging"
	"cratedig/internal/services"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", ConsoleWriter: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "downloader")
	component.Info("download complete", logging.String("attempt", "1"))
	component.Debug("hidden detail")

	out := buf.String()
	if !strings.Contains(out, " INFO downloader: download complete attempt=1") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if strings.Contains(out, "hidden detail") {
		t.Fatalf("debug record leaked through info console: %q", out)
	}
}

func TestNewConsoleQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", ConsoleWriter: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("resolving", logging.String("track", "Artist - Song"))

	if !strings.Contains(buf.String(), `track="Artist - Song"`) {
		t.Fatalf("expected quoted attr value, got %q", buf.String())
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", ConsoleWriter: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("json message", logging.String("k", "v"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json record: %v (raw %q)", err, buf.String())
	}
	if decoded["level"] != "info" {
		t.Errorf("level = %v, want info", decoded["level"])
	}
	if decoded["msg"] != "json message" {
		t.Errorf("msg = %v, want json message", decoded["msg"])
	}
	if decoded["k"] != "v" {
		t.Errorf("k = %v, want v", decoded["k"])
	}
	ts, ok := decoded["ts"].(string)
	if !ok {
		t.Fatalf("ts missing from record: %v", decoded)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("ts %q is not RFC3339: %v", ts, err)
	}
}

func TestNewUnknownFormatFails(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewSessionLogCapturesDebug(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download_session_20240102_150405.log")

	var console bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:          "warn",
		Format:         "console",
		SessionLogPath: path,
		ConsoleWriter:  &console,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("quiet detail")
	logger.Warn("loud warning")

	out := console.String()
	if strings.Contains(out, "quiet detail") {
		t.Errorf("console at warn should not show debug records: %q", out)
	}
	if !strings.Contains(out, "loud warning") {
		t.Errorf("console missing warn record: %q", out)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read session log: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"quiet detail"`) {
		t.Errorf("session log missing debug record: %q", content)
	}
	if !strings.Contains(string(content), `"level":"debug"`) {
		t.Errorf("session log missing debug level: %q", content)
	}
}

func TestNewCreatesSessionLogDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "download_session_20240102_150405.log")

	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", SessionLogPath: path, ConsoleWriter: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected session log created: %v", err)
	}
}

func TestSessionLogPath(t *testing.T) {
	started := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	got := logging.SessionLogPath(filepath.Join("var", "logs"), started)
	want := filepath.Join("var", "logs", "download_session_20240102_150405.log")
	if got != want {
		t.Fatalf("SessionLogPath = %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"  debug  ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := logging.ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()

	logger, err := logging.NewFromConfig(&cfg, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Debug("debug message")
}

func TestNewFromConfigNil(t *testing.T) {
	logger, err := logging.NewFromConfig(nil, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", ConsoleWriter: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithSessionID(context.Background(), "sess-123")
	ctx = services.WithStage(ctx, "download")

	logging.WithContext(ctx, logger).Info("stage started")

	out := buf.String()
	if !strings.Contains(out, "session_id=sess-123") {
		t.Errorf("missing session_id field: %q", out)
	}
	if !strings.Contains(out, "stage=download") {
		t.Errorf("missing stage field: %q", out)
	}
}

func TestWithContextNoFieldsReturnsSameLogger(t *testing.T) {
	logger := logging.NewNop()
	if got := logging.WithContext(context.Background(), logger); got != logger {
		t.Fatal("expected unchanged logger when context has no fields")
	}
}
