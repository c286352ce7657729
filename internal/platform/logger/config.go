package logger

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputFile string // stdout, stderr or a file path

	// Rotation of OutputFile when it is a path. Zero values use the defaults.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		OutputFile: getEnv("LOG_OUTPUT_FILE", "stdout"),
		MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", defaultMaxSizeMB),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", defaultMaxBackups),
		MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", defaultMaxAgeDays),
	}
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ZapLevel maps the configured level name, defaulting to info.
func (c *LoggerConfig) ZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (c *LoggerConfig) ShouldLog(level string) bool {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return false
	}
	return l >= c.ZapLevel()
}
