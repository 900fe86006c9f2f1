package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"cratedig/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	// Level sets console verbosity. The session log file always records debug.
	Level string
	// Format selects the console handler: "console" or "json".
	Format string
	// SessionLogPath, when set, adds a JSON file sink capturing debug records.
	SessionLogPath string
	// ConsoleWriter defaults to os.Stderr, keeping stdout free for reports.
	ConsoleWriter io.Writer
	// Development adds source locations to records.
	Development bool
}

// New constructs a slog logger using the provided options. Console output and
// the session log file are independent sinks; a quiet console never loses
// forensic detail because the file sink stays at debug.
func New(opts Options) (*slog.Logger, error) {
	consoleLevel := new(slog.LevelVar)
	consoleLevel.Set(ParseLevel(opts.Level))

	writer := opts.ConsoleWriter
	if writer == nil {
		writer = os.Stderr
	}

	addSource := opts.Development || consoleLevel.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var console slog.Handler
	switch format {
	case "json":
		console = newJSONHandler(writer, consoleLevel, addSource)
	case "console":
		console = newConsoleHandler(writer, consoleLevel, colorEnabled(writer))
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if strings.TrimSpace(opts.SessionLogPath) == "" {
		return slog.New(console), nil
	}

	file, err := openSessionLog(opts.SessionLogPath)
	if err != nil {
		return nil, err
	}
	fileLevel := new(slog.LevelVar)
	fileLevel.Set(slog.LevelDebug)
	return slog.New(newFanoutHandler(console, newJSONHandler(file, fileLevel, true))), nil
}

// NewFromConfig creates a logger using application config. sessionLogPath may
// be empty for commands that do not write a session log.
func NewFromConfig(cfg *config.Config, sessionLogPath string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	return New(Options{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		SessionLogPath: sessionLogPath,
	})
}

// SessionLogPath builds the per-session log file path inside logDir.
func SessionLogPath(logDir string, startedAt time.Time) string {
	name := fmt.Sprintf("download_session_%s.log", startedAt.Format("20060102_150405"))
	return filepath.Join(logDir, name)
}

// ParseLevel converts a config level string into a slog level, defaulting to
// info for empty or unknown values.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func openSessionLog(path string) (io.Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open session log %s: %w", path, err)
	}
	return file, nil
}
