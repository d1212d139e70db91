package config

import (
	"go.uber.org/zap"
)

// setLogger returns a zap logger for the given environment. production logs
// JSON at info level, everything else logs in console form at debug level.
func setLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
