// Package palette resolves color tokens to normalized RGB triples.
// It is the name lookup behind every blend: custom entries loaded from
// configuration are consulted first, then the built-in color tables.
package palette

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownColor is returned when a token matches no known color form.
	ErrUnknownColor = errors.New("unknown color")

	// ErrEmptyName is returned for empty or whitespace-only tokens.
	ErrEmptyName = errors.New("empty color name")
)

// RGB is a color with red, green and blue channels. Built-in colors are
// normalized to [0, 1]; custom entries are stored as given.
type RGB [3]float64

// Palette is a set of custom named colors layered over the built-in tables.
// It is safe for concurrent use and may be replaced while lookups run.
type Palette struct {
	mu     sync.RWMutex
	custom map[string]RGB
}

// New creates an empty palette that resolves only built-in colors.
func New() *Palette {
	return &Palette{custom: make(map[string]RGB)}
}

var defaultPalette = New()

// Default returns the process-wide palette.
func Default() *Palette {
	return defaultPalette
}

// ToRGB resolves a token. Custom entries take precedence over built-ins.
func (p *Palette) ToRGB(name string) (RGB, error) {
	key := normalize(name)
	if key == "" {
		return RGB{}, ErrEmptyName
	}

	p.mu.RLock()
	c, ok := p.custom[key]
	p.mu.RUnlock()
	if ok {
		return c, nil
	}

	return Builtin(name)
}

// Set registers or overwrites a custom color.
func (p *Palette) Set(name string, c RGB) error {
	key := normalize(name)
	if key == "" {
		return ErrEmptyName
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.custom[key] = c
	return nil
}

// SetString registers a custom color from any token ToRGB understands,
// including names already registered on this palette.
func (p *Palette) SetString(name, value string) error {
	c, err := p.ToRGB(value)
	if err != nil {
		return fmt.Errorf("palette entry %q: %w", name, err)
	}
	return p.Set(name, c)
}

// Replace swaps all custom entries for the given set in one step.
func (p *Palette) Replace(entries map[string]RGB) error {
	custom := make(map[string]RGB, len(entries))
	for name, c := range entries {
		key := normalize(name)
		if key == "" {
			return ErrEmptyName
		}
		custom[key] = c
	}

	p.mu.Lock()
	p.custom = custom
	p.mu.Unlock()
	return nil
}

// Names returns the custom entry names in sorted order.
func (p *Palette) Names() []string {
	p.mu.RLock()
	names := make([]string, 0, len(p.custom))
	for name := range p.custom {
		names = append(names, name)
	}
	p.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of custom entries.
func (p *Palette) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.custom)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
