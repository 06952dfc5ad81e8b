// Package config provides configuration parsing for colormix.
// It defines the configuration structures shared by the Lua and
// plain-text configuration parsers.
package config

import (
	"fmt"
	"strings"
)

// Config holds the settings read from a colormix configuration file.
type Config struct {
	// Complementary applies the complementary transform to every blend.
	Complementary bool
	// Format selects how blended colors are printed.
	Format Format
	// Precision is the number of decimals printed in FormatFloat and FormatRGBA.
	Precision int
	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string
	// Palette maps custom color names to color tokens. Values may refer to
	// built-in colors or to other entries of the same palette.
	Palette map[string]string
}

// Format selects the textual representation of a blended color.
type Format int

const (
	// FormatFloat prints the four channels as space-separated decimals.
	FormatFloat Format = iota
	// FormatHex prints "#rrggbb", dropping alpha.
	FormatHex
	// FormatRGBA prints "rgba(r, g, b, a)" with 8-bit color channels.
	FormatRGBA
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatFloat:
		return "float"
	case FormatHex:
		return "hex"
	case FormatRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "":
		return FormatFloat, nil
	case "hex":
		return FormatHex, nil
	case "rgba":
		return FormatRGBA, nil
	default:
		return FormatFloat, fmt.Errorf("unknown format: %s", s)
	}
}

// Set implements flag.Value.
func (f *Format) Set(s string) error {
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
