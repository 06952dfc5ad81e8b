package colormix

import "github.com/opd-ai/go-colormix/internal/palette"

// Resolver maps a color token to its RGB channels.
type Resolver interface {
	ToRGB(name string) (RGB, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(name string) (RGB, error)

// ToRGB calls f(name).
func (f ResolverFunc) ToRGB(name string) (RGB, error) {
	return f(name)
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithResolver sets the color name lookup. A nil resolver is ignored.
func WithResolver(r Resolver) Option {
	return func(m *Mixer) {
		if r != nil {
			m.resolver = r
		}
	}
}

// WithPalette resolves names through the given palette.
func WithPalette(p *palette.Palette) Option {
	return func(m *Mixer) {
		if p != nil {
			m.resolver = p
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(m *Mixer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records blend counts and latency in mt.
func WithMetrics(mt *Metrics) Option {
	return func(m *Mixer) {
		m.metrics = mt
	}
}
