package resolver

import (
	"log/slog"
	"time"
)

type Option func(r *Resolver)

// WithLogger specifies the logger for the resolver
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithNowFunc specifies the time source for staleness checks
func WithNowFunc(nowFn func() time.Time) Option {
	return func(r *Resolver) {
		r.nowFn = nowFn
	}
}
