package logger

import (
	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/config"
)

// New builds the application logger. Production gets JSON output at info level,
// every other environment gets the human-readable development logger.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}

// NewFile builds a logger that writes only to path. The terminal front-end uses it
// so log lines never interleave with the rendered screen.
func NewFile(cfg *config.Config, path string) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zc = zap.NewProductionConfig()
	}
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}

	return zc.Build()
}
