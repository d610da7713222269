// Package logging builds the zap loggers used across footprints.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where and how much to log.
type Options struct {
	// File is the rotated log file. Empty disables file output.
	File string
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// Console also writes to stderr. Ignored when File is empty, which
	// always logs to stderr.
	Console bool
}

// New builds a SugaredLogger. File output is rotated by lumberjack.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig())

	var sinks []zapcore.WriteSyncer
	if opts.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}))
	}
	if opts.File == "" || opts.Console {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

// OrNop returns l, or a logger that discards everything when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

// Sync flushes buffered entries; errors from syncing stderr are ignored.
func Sync(l *zap.SugaredLogger) {
	if l != nil {
		_ = l.Sync()
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
}
