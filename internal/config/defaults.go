package config

// Default configuration values.
const (
	DefaultFormat    = FormatFloat
	DefaultPrecision = 4
	DefaultLogLevel  = "info"
)

// MaxPrecision is the largest accepted Precision.
const MaxPrecision = 17

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Complementary: false,
		Format:        DefaultFormat,
		Precision:     DefaultPrecision,
		LogLevel:      DefaultLogLevel,
		Palette:       make(map[string]string),
	}
}
