// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// CardForge writes lifecycle and error events as JSON.  With a file
// configured the sink is a Lumberjack-rotated file; otherwise JSON goes to
// stderr, which is what container platforms collect.  In an interactive TTY
// a colorized console core is teed alongside.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Level: "info", File: cfg.Log.File, Tee: isTTY})
//	if err != nil { … }
//	log.Info("domain resolved", zap.String("host", host))
//
// Notes
// -----
// • ISO-8601 timestamps and lowercase levels.
// • The logger is installed globally so zap.L() and zap.S() work after boot.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, sink, and console tee.
type Options struct {
	Level string // debug|info|warn|error; empty means info
	File  string // rotated JSON file; empty means stderr
	Tee   bool   // also write colored console lines to stdout
}

// New builds the process logger and installs it with zap.ReplaceGlobals.
func New(opts Options) (*zap.Logger, error) {
	lvl := zap.InfoLevel
	if opts.Level != "" {
		if err := lvl.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("logger: level %q: %w", opts.Level, err)
		}
	}

	sink, err := sinkFor(opts.File)
	if err != nil {
		return nil, err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, lvl),
	}

	if opts.Tee {
		con := encCfg
		con.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(con),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(sink),
	)
	zap.ReplaceGlobals(z)

	z.Info("logger online", zap.String("level", lvl.String()), zap.Bool("tee", opts.Tee))
	return z, nil
}

func sinkFor(file string) (zapcore.WriteSyncer, error) {
	if file == "" {
		return zapcore.Lock(os.Stderr), nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("logger: mkdir: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}), nil
}
