package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
// The returned level can be adjusted at runtime, for example by a --verbose flag.
func NewApplicationLogger() (*zap.Logger, zap.AtomicLevel, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	logger, buildError := config.Build()
	if buildError != nil {
		return nil, config.Level, buildError
	}
	return logger, config.Level, nil
}

// ParseLogLevel converts a textual level such as "debug" or "warn" into a zap level.
// Unknown or empty values fall back to info.
func ParseLogLevel(levelText string) zapcore.Level {
	level, parseError := zapcore.ParseLevel(levelText)
	if parseError != nil {
		return zapcore.InfoLevel
	}
	return level
}
