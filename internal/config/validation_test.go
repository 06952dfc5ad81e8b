package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/opd-ai/go-colormix/internal/palette"
)

func TestValidationErrorError(t *testing.T) {
	ve := ValidationError{
		Field:   "palette.brand",
		Message: "test message",
	}
	expected := "palette.brand: test message"
	if ve.Error() != expected {
		t.Errorf("expected %q, got %q", expected, ve.Error())
	}
}

func TestValidationResult(t *testing.T) {
	vr := &ValidationResult{}
	if !vr.IsValid() || vr.Error() != nil {
		t.Fatal("empty result should be valid")
	}

	vr.AddWarning("palette.red", "shadows a built-in color")
	if !vr.IsValid() {
		t.Error("warnings must not invalidate the result")
	}

	vr.AddError("format", "bad")
	vr.AddError("precision", "worse")
	if vr.IsValid() {
		t.Error("result with errors reported valid")
	}
	err := vr.Error()
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "format: bad; precision: worse") {
		t.Errorf("unexpected combined error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:       "unknown format",
			modify:     func(c *Config) { c.Format = Format(9) },
			wantErrors: []string{"format"},
		},
		{
			name:       "negative precision",
			modify:     func(c *Config) { c.Precision = -1 },
			wantErrors: []string{"precision"},
		},
		{
			name:       "precision too large",
			modify:     func(c *Config) { c.Precision = MaxPrecision + 1 },
			wantErrors: []string{"precision"},
		},
		{
			name:       "unknown log level",
			modify:     func(c *Config) { c.LogLevel = "chatty" },
			wantErrors: []string{"log_level"},
		},
		{
			name: "unresolvable palette value",
			modify: func(c *Config) {
				c.Palette["brand"] = "not-a-color"
				c.Palette["ok"] = "navy"
			},
			wantErrors: []string{"palette.brand"},
		},
		{
			name:       "empty palette name",
			modify:     func(c *Config) { c.Palette["  "] = "red" },
			wantErrors: []string{"palette"},
		},
		{
			name:         "shadowed built-in",
			modify:       func(c *Config) { c.Palette["red"] = "#cc0000" },
			wantWarnings: []string{"palette.red"},
		},
		{
			name: "palette cycle",
			modify: func(c *Config) {
				c.Palette["x"] = "z"
				c.Palette["z"] = "x"
			},
			wantErrors: []string{"palette.x", "palette.z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			result := Validate(&cfg)
			if got := fields(result.Errors); !equalStrings(got, tt.wantErrors) {
				t.Errorf("errors = %v, want fields %v", result.Errors, tt.wantErrors)
			}
			if got := fields(result.Warnings); !equalStrings(got, tt.wantWarnings) {
				t.Errorf("warnings = %v, want fields %v", result.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if Validate(nil).IsValid() {
		t.Error("nil config reported valid")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"info+2", slog.LevelInfo + 2, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolvePalette(t *testing.T) {
	resolved, err := ResolvePalette(map[string]string{
		"Brand":  "#ff0000",
		"accent": "brand",
		"shade":  "ACCENT",
		"navy":   "navy",
		"mid":    "0.5",
	})
	if err != nil {
		t.Fatalf("ResolvePalette failed: %v", err)
	}

	red := palette.RGB{1, 0, 0}
	for _, name := range []string{"brand", "accent", "shade"} {
		if resolved[name] != red {
			t.Errorf("%s = %v, want %v", name, resolved[name], red)
		}
	}
	if resolved["navy"] != (palette.RGB{0, 0, 128.0 / 255}) {
		t.Errorf("self-referencing navy = %v, want the built-in navy", resolved["navy"])
	}
	if resolved["mid"] != (palette.RGB{0.5, 0.5, 0.5}) {
		t.Errorf("mid = %v, want grey 0.5", resolved["mid"])
	}
}

func TestResolvePaletteErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		wantErr error
	}{
		{"unknown color", map[string]string{"brand": "blurple"}, palette.ErrUnknownColor},
		{"two entry cycle", map[string]string{"a": "b", "b": "a"}, ErrPaletteCycle},
		{"three entry cycle", map[string]string{"a": "b", "b": "c", "c": "a"}, ErrPaletteCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePalette(tt.entries)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResolvePalette error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApply(t *testing.T) {
	p := palette.New()
	if err := p.Set("stale", palette.RGB{0, 0, 0}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Palette["brand"] = "#00ff00"
	if err := Apply(&cfg, p); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, err := p.ToRGB("BRAND")
	if err != nil {
		t.Fatalf("ToRGB failed: %v", err)
	}
	if got != (palette.RGB{0, 1, 0}) {
		t.Errorf("brand = %v, want green", got)
	}
	if _, err := p.ToRGB("stale"); err == nil {
		t.Error("Apply kept an entry from the previous palette")
	}

	cfg.Palette["broken"] = "blurple"
	if err := Apply(&cfg, p); err == nil {
		t.Fatal("expected error for unresolvable entry")
	}
	if _, err := p.ToRGB("brand"); err != nil {
		t.Error("failed Apply modified the palette")
	}

	if err := Apply(nil, p); err == nil {
		t.Error("expected error for nil config")
	}
}

func fields(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
