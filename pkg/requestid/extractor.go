package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/trustkit/pkg/logger"
)

// LoggerExtractor adds the request id to every record logged with a context
// that went through the middleware.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
