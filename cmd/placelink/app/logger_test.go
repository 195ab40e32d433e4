package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{"default", &Config{}, "info"},
		{"verbose", &Config{Verbose: true}, "debug"},
		{"quiet", &Config{Quiet: true}, "warn"},
		{"verbose and quiet", &Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit overrides verbose", &Config{LogLevel: "error", Verbose: true}, "error"},
		{"explicit overrides quiet", &Config{LogLevel: "trace", Quiet: true}, "trace"},
		{"invalid explicit", &Config{LogLevel: "loud"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.config))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json", LogOutput: "discard"})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
