package extensions

import (
	"context"
	"time"

	"go.uber.org/zap"

	scoped "github.com/scoped-fn/scoped-go"
)

// LoggingExtension logs producer acquisitions and release failures
type LoggingExtension struct {
	scoped.BaseExtension
	logger *zap.Logger
}

// NewLoggingExtension creates a logging extension writing to logger
func NewLoggingExtension(logger *zap.Logger) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: scoped.NewBaseExtension("logging"),
		logger:        logger,
	}
}

func (e *LoggingExtension) WrapAcquire(ctx context.Context, next func() (any, error), op *scoped.Operation) (any, error) {
	start := time.Now()
	result, err := next()

	fields := []zap.Field{
		zap.String("producer", op.Producer.Name()),
		zap.String("kind", string(op.Kind)),
		zap.String("scope", op.ScopeID),
		zap.Duration("elapsed", time.Since(start)),
	}

	if err != nil {
		e.logger.Warn("acquire failed", append(fields, zap.Error(err))...)
		return result, err
	}

	e.logger.Debug("acquired", fields...)
	return result, err
}

func (e *LoggingExtension) OnReleaseError(relErr *scoped.ReleaseError) bool {
	e.logger.Warn("release failed",
		zap.String("owner", relErr.Owner),
		zap.Error(relErr.Err),
	)
	return false
}
