// Package logger builds the zap logger shared by the server, the
// notification worker and the sweeper.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger for APP_ENV=prod and a colored
// console logger otherwise.
func New(env string) (*zap.Logger, error) {
	if strings.EqualFold(env, "prod") || strings.EqualFold(env, "production") {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}
