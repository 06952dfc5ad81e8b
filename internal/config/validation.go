// Package config provides configuration parsing and validation for colormix.
// This file implements validation of configuration values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/opd-ai/go-colormix/internal/palette"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks every setting of cfg and collects all problems found.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		result.AddError("config", "is nil")
		return result
	}

	if cfg.Format < FormatFloat || cfg.Format > FormatRGBA {
		result.AddError("format", fmt.Sprintf("unknown format: %d", cfg.Format))
	}

	if cfg.Precision < 0 || cfg.Precision > MaxPrecision {
		result.AddError("precision", fmt.Sprintf("must be between 0 and %d, got %d", MaxPrecision, cfg.Precision))
	}

	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		result.AddError("log_level", err.Error())
	}

	validatePalette(cfg.Palette, result)
	return result
}

func validatePalette(entries map[string]string, result *ValidationResult) {
	names := sortedNames(entries)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			result.AddError("palette", "entry with empty name")
			continue
		}
		if _, err := palette.Builtin(name); err == nil {
			result.AddWarning("palette."+name, "shadows a built-in color")
		}
	}

	_, unresolved := resolveEntries(entries)
	for _, name := range sortedNames(unresolved) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		result.AddError("palette."+name, unresolved[name].Error())
	}
}

// ParseLogLevel converts "debug", "info", "warn" or "error" (optionally with
// an offset such as "info+2") to a slog.Level. An empty string means info.
func ParseLogLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
	return level, nil
}

// ErrPaletteCycle is returned when palette entries refer to each other in a loop.
var ErrPaletteCycle = errors.New("palette entries refer to each other in a cycle")

// ResolvePalette resolves every palette value to RGB. Values may name other
// entries of the same palette, which take precedence over built-in colors.
// The first unresolvable entry, in name order, is reported.
func ResolvePalette(entries map[string]string) (map[string]palette.RGB, error) {
	resolved, unresolved := resolveEntries(entries)
	if len(unresolved) > 0 {
		name := sortedNames(unresolved)[0]
		return nil, fmt.Errorf("palette entry %q: %w", name, unresolved[name])
	}
	return resolved, nil
}

// Apply resolves cfg's palette and installs it in p, replacing all custom
// entries p held before. On error p is left unchanged.
func Apply(cfg *Config, p *palette.Palette) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	resolved, err := ResolvePalette(cfg.Palette)
	if err != nil {
		return err
	}
	return p.Replace(resolved)
}

// resolveEntries resolves entries in dependency order. An entry whose value
// names another pending entry waits for it.
func resolveEntries(entries map[string]string) (map[string]palette.RGB, map[string]error) {
	pending := make(map[string]string, len(entries))
	for name, value := range entries {
		pending[normalize(name)] = value
	}

	scratch := palette.New()
	resolved := make(map[string]palette.RGB, len(entries))
	unresolved := make(map[string]error)

	for len(pending) > 0 {
		progress := false
		for _, name := range sortedNames(pending) {
			value := pending[name]
			ref := normalize(value)
			if _, waiting := pending[ref]; waiting && ref != name {
				continue
			}

			var (
				c   palette.RGB
				err error
			)
			if ref == name {
				c, err = palette.Builtin(value)
			} else {
				c, err = scratch.ToRGB(value)
			}
			delete(pending, name)
			progress = true

			if err != nil {
				unresolved[name] = err
				continue
			}
			if err := scratch.Set(name, c); err != nil {
				unresolved[name] = err
				continue
			}
			resolved[name] = c
		}

		if !progress {
			for name := range pending {
				unresolved[name] = ErrPaletteCycle
			}
			break
		}
	}

	return resolved, unresolved
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
