package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "LIBRARYGRID_LOG"

// New returns a text logger writing to w at the level named by
// $LIBRARYGRID_LOG (debug, info, warn, error). Unknown values mean info.
func New(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(os.Getenv(EnvLevel))}))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StepLogger records the progress lines of one deployment operation and
// forwards each to the process logger.
type StepLogger struct {
	op     string
	logger *slog.Logger
	lines  []string
	mu     sync.Mutex
	onLine func(op, line string)
}

func NewStepLogger(op string, logger *slog.Logger, onLine func(op, line string)) *StepLogger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StepLogger{
		op:     op,
		logger: logger,
		onLine: onLine,
	}
}

func (l *StepLogger) Log(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	ts := time.Now().Format("15:04:05")
	full := fmt.Sprintf("[%s] %s", ts, line)

	l.mu.Lock()
	l.lines = append(l.lines, full)
	l.mu.Unlock()

	l.logger.Info(line, "op", l.op)

	if l.onLine != nil {
		l.onLine(l.op, full)
	}
}

// Warn is Log at warning level.
func (l *StepLogger) Warn(format string, args ...any) {
	line := fmt.Sprintf(format, args...)

	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf("[%s] warning: %s", time.Now().Format("15:04:05"), line))
	l.mu.Unlock()

	l.logger.Warn(line, "op", l.op)
}

func (l *StepLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]string, len(l.lines))
	copy(cp, l.lines)
	return cp
}
