package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domtrace "github.com/kailas-cloud/assessrec/internal/domain/trace"
	"github.com/kailas-cloud/assessrec/internal/logger"
)

const traceMessage = "recommendation trace"

// FileSink appends one JSON line per trace to a file.
type FileSink struct {
	file *os.File
	core zapcore.Core
}

// NewFileSink opens path for appending, creating parent directories.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileSink{file: f, core: logger.NewJSONLinesCore(f)}, nil
}

// Name identifies the sink in metrics.
func (s *FileSink) Name() string { return "file" }

// Write appends t. The core serializes concurrent writers.
func (s *FileSink) Write(t domtrace.Trace) error {
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: traceMessage}
	if err := s.core.Write(entry, []zapcore.Field{zap.Inline(t)}); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	_ = s.core.Sync()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close trace file: %w", err)
	}
	return nil
}

// LoggerSink writes traces through the application logger.
type LoggerSink struct {
	logger *zap.Logger
}

// NewLoggerSink creates a sink backed by l.
func NewLoggerSink(l *zap.Logger) *LoggerSink {
	return &LoggerSink{logger: l}
}

// Name identifies the sink in metrics.
func (s *LoggerSink) Name() string { return "logger" }

// Write logs t at info level.
func (s *LoggerSink) Write(t domtrace.Trace) error {
	s.logger.Info(traceMessage, zap.Inline(t))
	return nil
}
