package phasebus

import "log/slog"

// Option configures an Event at construction time.
//
// Options mutate a shared config struct rather than the event itself so
// the same option values work for every listener type instantiation.
type Option func(*eventConfig)

type eventConfig struct {
	logger *slog.Logger
}

// WithLogger routes this event's cycle diagnostics to logger instead of
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *eventConfig) {
		c.logger = logger
	}
}
