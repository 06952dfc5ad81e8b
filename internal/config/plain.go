// Package config provides configuration parsing for colormix.
// This file implements the plain-text configuration parser.

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// PlainParser parses line-oriented configuration files:
//
//	# comment
//	complementary yes
//	format hex
//	precision 3
//	log_level debug
//	color brand #ff8800
//	color shade rgb(10, 20, 30)
//
// Unknown directives are ignored.
type PlainParser struct{}

// NewPlainParser creates a new PlainParser instance.
func NewPlainParser() *PlainParser {
	return &PlainParser{}
}

// Parse parses plain-text configuration content.
func (p *PlainParser) Parse(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	scanner := bufio.NewScanner(bytes.NewReader(content))

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		trimmed := strings.TrimSpace(scanner.Text())

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if err := p.parseDirective(&cfg, trimmed, lineNum); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	return &cfg, nil
}

// parseDirective parses a single "key value" line.
func (p *PlainParser) parseDirective(cfg *Config, line string, lineNum int) error {
	key, value := cutSpace(line)
	key = strings.ToLower(key)

	switch key {
	case "complementary":
		// A bare directive turns the flag on.
		cfg.Complementary = value == "" || parseBool(value)

	case "format":
		f, err := ParseFormat(value)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		cfg.Format = f

	case "precision":
		n, err := parseInt(value)
		if err != nil {
			return fmt.Errorf("line %d: invalid precision: %w", lineNum, err)
		}
		cfg.Precision = n

	case "log_level":
		cfg.LogLevel = value

	case "color", "colour":
		name, token := cutSpace(value)
		if name == "" || token == "" {
			return fmt.Errorf("line %d: color directive needs a name and a value", lineNum)
		}
		cfg.Palette[name] = token
	}

	return nil
}

// cutSpace splits s at its first run of whitespace.
func cutSpace(s string) (head, tail string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// parseBool parses a boolean value from common string representations.
// Accepts: yes, no, true, false, 1, 0
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// parseInt parses an int from a string.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	return strconv.Atoi(s)
}
