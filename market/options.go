package market

import "log/slog"

type EngineOption func(e *Engine)

// WithLogger specifies the logger for the conversion engine
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}
