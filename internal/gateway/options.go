package gateway

import (
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single remote call when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// DefaultConnectTimeout bounds Connect when no timeout is given.
const DefaultConnectTimeout = 5 * time.Second

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithStrict selects strict mode: failures panic after being logged.
func WithStrict(strict bool) Option {
	return func(g *Gateway) {
		g.strict = strict
	}
}

// WithDefaultTimeout sets the per-call deadline. Zero keeps DefaultTimeout;
// a negative value disables the deadline.
func WithDefaultTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d != 0 {
			g.defaultTimeout = d
		}
	}
}

// WithConnectTimeout sets the deadline used when Connect is given none.
func WithConnectTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.connectTimeout = d
		}
	}
}

// CallOption adjusts a single gateway call.
type CallOption func(*callConfig)

type callConfig struct {
	timeout time.Duration
	lenient bool
}

// WithTimeout overrides the per-call deadline for one invocation.
// A negative value disables the deadline for that call.
func WithTimeout(d time.Duration) CallOption {
	return func(c *callConfig) {
		c.timeout = d
	}
}

// Lenient returns this call's failure as an error even in strict mode. It is
// for reads that have a local fallback.
func Lenient() CallOption {
	return func(c *callConfig) {
		c.lenient = true
	}
}
