// Package app provides logger initialization.
package app

import (
	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/logger"
)

// InitializeLogger configures the global logger.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(cfg.Level, cfg.Pretty)
}
