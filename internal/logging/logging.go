// Package logging builds the zap logger used by the CLI.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a zap level name such as "debug" or "info".
type Level string

// Style selects the output encoding.
type Style string

const (
	// StyleTerminal writes colored, human readable lines.
	StyleTerminal Style = "terminal"
	// StyleJSON writes one JSON object per line.
	StyleJSON Style = "json"
	// StyleNoop discards everything.
	StyleNoop Style = "noop"
)

// Config selects level and style.
type Config struct {
	Level Level
	Style Style
}

// NewLogger builds a logger for cfg. Unknown levels fall back to info and
// unknown styles to terminal.
func NewLogger(cfg *Config) *zap.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Style == StyleNoop {
		return zap.NewNop()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if l, err := zapcore.ParseLevel(string(cfg.Level)); err == nil {
			level = l
		}
	}

	var zcfg zap.Config
	switch cfg.Style {
	case StyleJSON:
		zcfg = zap.NewProductionConfig()
	default:
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
