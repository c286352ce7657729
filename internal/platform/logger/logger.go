package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger keeps the key/value call style used across the service:
//
//	log.Info("DiscoveryUsecase.Browse: done", "total", total)
type Logger struct {
	sugar  *zap.SugaredLogger
	config *LoggerConfig
}

func NewLogger() *Logger {
	return New(DefaultConfig())
}

func New(cfg *LoggerConfig) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" || cfg.Format == "text" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, buildWriteSyncer(cfg), zap.NewAtomicLevelAt(cfg.ZapLevel()))
	z := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
	return &Logger{sugar: z.Sugar(), config: cfg}
}

// buildWriteSyncer writes to stdout or stderr, or to a rotated file mirrored
// on stdout.
func buildWriteSyncer(cfg *LoggerConfig) zapcore.WriteSyncer {
	switch cfg.OutputFile {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot create log directory, using stdout: %v\n", err)
		return zapcore.Lock(os.Stdout)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.OutputFile,
		MaxSize:    orDefault(cfg.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}
	return zapcore.NewMultiWriteSyncer(zapcore.AddSync(file), zapcore.Lock(os.Stdout))
}

// NewNop discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), config: &LoggerConfig{Level: "error"}}
}

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugar: l.sugar.Named(name), config: l.config}
}

// With returns a child logger carrying the given key/value pairs on every line.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...), config: l.config}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered entries. Call before exit.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Zap exposes the underlying logger for libraries that take a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}
