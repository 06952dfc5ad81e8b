// Package config provides configuration parsing for colormix.
// This file implements the Lua configuration parser.

package config

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// Resource limits applied while executing a configuration file.
const (
	luaCPULimit    = 10_000_000
	luaMemoryLimit = 50 * 1024 * 1024 // 50 MB
)

// LuaConfigParser parses Lua configuration files.
// It executes the file and reads the colormix.config and colormix.palette tables.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser with custom output
// for Lua print calls.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes Lua configuration content and extracts the configuration.
// Exceeding the CPU or memory limit is reported as an error.
func (p *LuaConfigParser) Parse(content []byte) (cfg *Config, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    luaCPULimit,
			Memory: luaMemoryLimit,
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	// golua panics with a ContextTerminationError when a hard limit is hit.
	defer func() {
		if r := recover(); r != nil {
			term, ok := r.(rt.ContextTerminationError)
			if !ok {
				panic(r)
			}
			cfg, err = nil, fmt.Errorf("failed to execute Lua configuration: %w", term)
		}
	}()

	thread := p.runtime.MainThread()
	_, err = rt.Call1(thread, rt.FunctionValue(closure))
	if err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

// initGlobal resets the colormix global table so each Parse starts clean.
func (p *LuaConfigParser) initGlobal() {
	table := rt.NewTable()
	table.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	table.Set(rt.StringValue("palette"), rt.TableValue(rt.NewTable()))

	p.runtime.GlobalEnv().Set(rt.StringValue("colormix"), rt.TableValue(table))
}

func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	globalVal := p.runtime.GlobalEnv().Get(rt.StringValue("colormix"))
	if globalVal == rt.NilValue {
		return &cfg, nil
	}

	global, ok := globalVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("colormix is not a table")
	}

	if configTable, ok := global.Get(rt.StringValue("config")).TryTable(); ok {
		if err := extractConfigTable(&cfg, configTable); err != nil {
			return nil, err
		}
	}

	paletteVal := global.Get(rt.StringValue("palette"))
	if paletteVal != rt.NilValue {
		paletteTable, ok := paletteVal.TryTable()
		if !ok {
			return nil, fmt.Errorf("colormix.palette is not a table")
		}
		if err := extractPalette(&cfg, paletteTable); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func extractConfigTable(cfg *Config, table *rt.Table) error {
	if val := getTableBool(table, "complementary"); val != nil {
		cfg.Complementary = *val
	}
	if val := getTableInt(table, "precision"); val != nil {
		cfg.Precision = *val
	}
	if val := getTableString(table, "log_level"); val != nil {
		cfg.LogLevel = *val
	}
	if val := getTableString(table, "format"); val != nil {
		f, err := ParseFormat(*val)
		if err != nil {
			return fmt.Errorf("invalid format: %w", err)
		}
		cfg.Format = f
	}
	return nil
}

// extractPalette copies string entries of colormix.palette. A numeric value
// is taken as a grey level.
func extractPalette(cfg *Config, table *rt.Table) error {
	for k, v, _ := table.Next(rt.NilValue); k != rt.NilValue; k, v, _ = table.Next(k) {
		name, ok := k.TryString()
		if !ok {
			return fmt.Errorf("palette key %v is not a string", k)
		}

		if s, ok := v.TryString(); ok {
			cfg.Palette[name] = s
			continue
		}
		if f, ok := v.TryFloat(); ok {
			cfg.Palette[name] = fmt.Sprint(f)
			continue
		}
		if n, ok := v.TryInt(); ok {
			cfg.Palette[name] = fmt.Sprint(n)
			continue
		}
		return fmt.Errorf("palette entry %q must be a string", name)
	}
	return nil
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if b, ok := val.TryBool(); ok {
		return &b
	}

	// Accept "yes"/"true" strings like the plain-text format.
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}

	return nil
}

// getTableString retrieves a string value from a Lua table.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if s, ok := val.TryString(); ok {
		return &s
	}

	return nil
}

// getTableInt retrieves an int value from a Lua table, truncating floats.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}

	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}

	return nil
}
