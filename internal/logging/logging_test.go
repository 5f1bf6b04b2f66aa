package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *Config
		debug bool
		info  bool
	}{
		{"nil config", nil, false, true},
		{"debug terminal", &Config{Level: "debug", Style: StyleTerminal}, true, true},
		{"warn json", &Config{Level: "warn", Style: StyleJSON}, false, false},
		{"bad level", &Config{Level: "loud"}, false, true},
		{"noop", &Config{Level: "debug", Style: StyleNoop}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.cfg)
			assert.NotNil(t, logger)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.info, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}
