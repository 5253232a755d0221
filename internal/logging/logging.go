// Package logging builds the zap loggers handed to every component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure New.
type Options struct {
	// File receives JSON lines at Level and above. Empty disables the file.
	File string
	// Level is the file log level name, e.g. "debug" or "info".
	Level string
	// ConsoleLevel is the minimum level echoed to stderr.
	ConsoleLevel string
}

// New returns a logger writing JSON lines to opts.File and human-readable
// lines to stderr. The returned function flushes and closes the file.
func New(opts Options) (*zap.Logger, func(), error) {
	fileLevel, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	consoleLevel, err := zapcore.ParseLevel(defaultString(opts.ConsoleLevel, "warn"))
	if err != nil {
		return nil, nil, fmt.Errorf("console log level: %w", err)
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCfg.TimeKey = ""
	consoleCfg.CallerKey = ""
	consoleCfg.StacktraceKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), consoleLevel),
	}

	closer := func() {}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), fileLevel))
		closer = func() { _ = f.Sync(); _ = f.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() {
		_ = logger.Sync()
		closer()
	}, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// leveled adapts a zap logger to retryablehttp's leveled logger.
type leveled struct {
	s *zap.SugaredLogger
}

// Leveled returns a retryablehttp.LeveledLogger backed by logger.
func Leveled(logger *zap.Logger) retryablehttp.LeveledLogger {
	return leveled{s: logger.Named("http").Sugar()}
}

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
