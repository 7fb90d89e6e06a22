//go:build !integration

package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/guttosm/measure-pricing-service/config"
)

func TestInitializeLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name     string
		cfg      config.LogConfig
		expected zerolog.Level
	}{
		{"defaults to info", config.LogConfig{}, zerolog.InfoLevel},
		{"debug level", config.LogConfig{Level: "debug"}, zerolog.DebugLevel},
		{"pretty output", config.LogConfig{Level: "warn", Pretty: true}, zerolog.WarnLevel},
		{"unknown level", config.LogConfig{Level: "loud"}, zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				InitializeLogger(tt.cfg)
			})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}
