// Package dlogger exposes a simple zap logger, with log levels
package dlogger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogLevelInfo sets the log level to info
	LogLevelInfo = "info"

	// LogLevelDebug sets the log level to debug
	LogLevelDebug = "debug"

	// LogLevelNone sets logger to no logging
	LogLevelNone = "none"

	// DebugEnv forces the debug level when set to "true" or "1"
	DebugEnv = "CRANE_DEBUG"
)

// GetLogger returns a zap logger with the specified level.
//
// The logger writes human-readable lines to stderr, so that stdout remains
// available for command output.
func GetLogger(logLevel string) (*zap.Logger, error) {
	if DebugForced() {
		logLevel = LogLevelDebug
	}
	if logLevel == LogLevelNone {
		return zap.NewNop(), nil
	}
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Development = false
	zapConfig.DisableStacktrace = true
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapConfig.OutputPaths = []string{"stderr"}
	var lvl zapcore.Level
	err := lvl.UnmarshalText([]byte(logLevel))
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// MustGetLogger returns a zap logger with the specified level or panics
func MustGetLogger(logLevel string) *zap.Logger {
	l, err := GetLogger(logLevel)
	if err != nil {
		panic(err)
	}
	return l
}

// DebugForced tells if the environment requires debug logging
func DebugForced() bool {
	switch strings.ToLower(os.Getenv(DebugEnv)) {
	case "true", "1":
		return true
	default:
		return false
	}
}
