// Package config provides configuration parsing for colormix.
// This file implements the unified parser that auto-detects the configuration format.

package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
)

// Parser reads colormix configuration in either Lua or plain-text format.
type Parser struct {
	plainParser *PlainParser
	luaParser   *LuaConfigParser
}

// NewParser creates a new Parser that can handle both formats.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}

	return &Parser{
		plainParser: NewPlainParser(),
		luaParser:   luaParser,
	}, nil
}

// ParseFile reads and parses a configuration file, auto-detecting the format.
// Environment references in palette values are expanded.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return p.Parse(content)
}

// Parse parses configuration content, auto-detecting the format.
func (p *Parser) Parse(content []byte) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if isLuaConfig(content) {
		cfg, err = p.luaParser.Parse(content)
	} else {
		cfg, err = p.plainParser.Parse(content)
	}
	if err != nil {
		return nil, err
	}

	ExpandEnvConfig(cfg)
	return cfg, nil
}

// luaConfigPattern matches an assignment to colormix.config or
// colormix.palette at the start of a line.
var luaConfigPattern = regexp.MustCompile(`(?m)^\s*colormix\.(config|palette)\b`)

// isLuaConfig reports whether content uses the Lua format.
func isLuaConfig(content []byte) bool {
	return luaConfigPattern.Match(content)
}

// ParseFromFS reads and parses a configuration file from a filesystem such
// as an embed.FS.
func (p *Parser) ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}

	return p.Parse(content)
}

// ParseReader parses configuration from an io.Reader.
// The format parameter must be "plain" or "lua".
func (p *Parser) ParseReader(r io.Reader, format string) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg *Config
	switch format {
	case "lua":
		cfg, err = p.luaParser.Parse(content)
	case "plain":
		cfg, err = p.plainParser.Parse(content)
	default:
		return nil, fmt.Errorf("unknown format: %s (expected 'lua' or 'plain')", format)
	}
	if err != nil {
		return nil, err
	}

	ExpandEnvConfig(cfg)
	return cfg, nil
}

// Close releases resources associated with the parser.
func (p *Parser) Close() error {
	if p.luaParser != nil {
		return p.luaParser.Close()
	}
	return nil
}
