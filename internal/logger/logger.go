// Package logger builds the process-wide JSON slog logger.
//
// Logs go to <logDir>/system.log with size-based rotation, or to stdout when
// the output is "stdout".
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// OutputStdout selects standard output instead of a log file.
const OutputStdout = "stdout"

// Rotation limits for the system log file.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 28
)

// NewSystemLogger creates a JSON slog.Logger. When output is OutputStdout it
// writes to stdout; otherwise it writes to <logDir>/system.log, creating the
// directory if needed. The returned closer releases the log file.
func NewSystemLogger(output, logDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if output == OutputStdout {
		return newJSONLogger(os.Stdout, level), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "system.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	return newJSONLogger(w, level), w, nil
}

func newJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithTrace returns base annotated with the trace and span ids found in ctx.
// base is returned unchanged when ctx carries no valid span.
func WithTrace(ctx context.Context, base *slog.Logger) *slog.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return base
	}
	return base.With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
