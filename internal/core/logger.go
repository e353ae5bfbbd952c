package core

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger replaces the global logger with one honoring the configured
// level. Called once after the configuration is read; before that the
// default production logger from main is in effect.
func NewLogger(logLevel string) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		zap.L().Fatal("Invalid log level", zap.String("level", logLevel), zap.Error(err))
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)

	zap.ReplaceGlobals(zap.Must(config.Build()))
}
