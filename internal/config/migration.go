// Package config provides configuration parsing and migration for colormix.
// This file converts plain-text configurations to the Lua format.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Migrator converts a Config into Lua configuration source.
type Migrator struct {
	// includeComments adds explanatory comments to the output.
	includeComments bool
	// preserveDefaults includes settings even when they match defaults.
	preserveDefaults bool
}

// MigratorOption is a functional option for configuring a Migrator.
type MigratorOption func(*Migrator)

// WithComments enables adding explanatory comments to the Lua output.
func WithComments(include bool) MigratorOption {
	return func(m *Migrator) {
		m.includeComments = include
	}
}

// WithDefaults includes settings that match default values in the output.
func WithDefaults(preserve bool) MigratorOption {
	return func(m *Migrator) {
		m.preserveDefaults = preserve
	}
}

// NewMigrator creates a new Migrator with the given options.
func NewMigrator(opts ...MigratorOption) *Migrator {
	m := &Migrator{
		includeComments:  true,
		preserveDefaults: false,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MigrateToLua renders cfg as a Lua configuration file. Palette entries are
// written in name order so the output is stable.
func (m *Migrator) MigrateToLua(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	var buf bytes.Buffer

	if m.includeComments {
		buf.WriteString("-- colormix Lua configuration\n")
		buf.WriteString("-- Converted from the plain-text format\n\n")
	}

	defaults := DefaultConfig()

	buf.WriteString("colormix.config = {\n")
	if m.preserveDefaults || cfg.Complementary != defaults.Complementary {
		fmt.Fprintf(&buf, "    complementary = %t,\n", cfg.Complementary)
	}
	if m.preserveDefaults || cfg.Format != defaults.Format {
		fmt.Fprintf(&buf, "    format = %s,\n", strconv.Quote(cfg.Format.String()))
	}
	if m.preserveDefaults || cfg.Precision != defaults.Precision {
		fmt.Fprintf(&buf, "    precision = %d,\n", cfg.Precision)
	}
	if m.preserveDefaults || cfg.LogLevel != defaults.LogLevel {
		fmt.Fprintf(&buf, "    log_level = %s,\n", strconv.Quote(cfg.LogLevel))
	}
	buf.WriteString("}\n")

	if len(cfg.Palette) > 0 {
		names := make([]string, 0, len(cfg.Palette))
		for name := range cfg.Palette {
			names = append(names, name)
		}
		sort.Strings(names)

		buf.WriteString("\ncolormix.palette = {\n")
		for _, name := range names {
			fmt.Fprintf(&buf, "    [%s] = %s,\n", strconv.Quote(name), strconv.Quote(cfg.Palette[name]))
		}
		buf.WriteString("}\n")
	}

	return buf.Bytes(), nil
}

// MigratePlainFile reads a plain-text configuration file and converts it to Lua.
func MigratePlainFile(path string, opts ...MigratorOption) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return MigratePlainContent(content, opts...)
}

// MigratePlainContent converts plain-text configuration content to Lua.
func MigratePlainContent(content []byte, opts ...MigratorOption) ([]byte, error) {
	cfg, err := NewPlainParser().Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plain config: %w", err)
	}

	return NewMigrator(opts...).MigrateToLua(cfg)
}
