package colormix

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/opd-ai/go-colormix/internal/palette"
)

const tolerance = 1e-9

var errNoSuchColor = errors.New("no such color")

// stubResolver knows a handful of colors with non-trivial channel values.
var stubResolver = ResolverFunc(func(name string) (RGB, error) {
	switch name {
	case "red":
		return RGB{1, 0, 0}, nil
	case "blue":
		return RGB{0, 0, 1}, nil
	case "slate":
		return RGB{0.2, 0.4, 0.6}, nil
	case "sand":
		return RGB{0.9, 0.7, 0.3}, nil
	}
	return RGB{}, fmt.Errorf("%w: %s", errNoSuchColor, name)
})

func colorNear(a, b Color) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func TestBlendEndpoints(t *testing.T) {
	m := New(WithResolver(stubResolver))

	tests := []struct {
		spec     string
		expected Color
	}{
		{"red!100!blue", Color{1, 0, 0, 1}},
		{"red!0!blue", Color{0, 0, 1, 1}},
		{"slate!100!sand", Color{0.2, 0.4, 0.6, 1}},
		{"slate!0!sand", Color{0.9, 0.7, 0.3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := m.Blend(tt.spec, false)
			if err != nil {
				t.Fatalf("Blend(%q) unexpected error: %v", tt.spec, err)
			}
			if got != tt.expected {
				t.Errorf("Blend(%q) = %v, want %v", tt.spec, got, tt.expected)
			}
		})
	}
}

func TestBlendMidpointIsMean(t *testing.T) {
	m := New(WithResolver(stubResolver))

	got, err := m.Blend("slate!50!sand", false)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}

	want := Color{(0.2 + 0.9) / 2, (0.4 + 0.7) / 2, (0.6 + 0.3) / 2, 1}
	if !colorNear(got, want) {
		t.Errorf("Blend(slate!50!sand) = %v, want %v", got, want)
	}
}

func TestBlendWeighting(t *testing.T) {
	m := New(WithResolver(stubResolver))

	got, err := m.Blend("red!30!blue", false)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}
	if !colorNear(got, Color{0.3, 0, 0.7, 1}) {
		t.Errorf("Blend(red!30!blue) = %v, want [0.3 0 0.7 1]", got)
	}
}

func TestBlendAlpha(t *testing.T) {
	m := New(WithResolver(stubResolver))

	tests := []struct {
		spec  string
		alpha float64
	}{
		{"red!50!blue!50", 0.5},
		{"red!50!blue!0", 0},
		{"red!50!blue!100", 1},
		{"red!50!blue", 1},
		{"red!50!blue! 25 ", 0.25},
		// A fifth field disables the alpha field entirely.
		{"red!50!blue!20!extra", 1},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := m.Blend(tt.spec, false)
			if err != nil {
				t.Fatalf("Blend(%q) unexpected error: %v", tt.spec, err)
			}
			if got.Alpha() != tt.alpha {
				t.Errorf("Blend(%q) alpha = %v, want %v", tt.spec, got.Alpha(), tt.alpha)
			}
		})
	}
}

func TestBlendOutOfRangeIsPermissive(t *testing.T) {
	m := New(WithResolver(stubResolver))

	got, err := m.Blend("red!150!blue!200", false)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}
	if !colorNear(got, Color{1.5, 0, -0.5, 2}) {
		t.Errorf("Blend(red!150!blue!200) = %v, want [1.5 0 -0.5 2]", got)
	}

	got, err = m.Blend("red!-20!blue!-10", false)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}
	if !colorNear(got, Color{-0.2, 0, 1.2, -0.1}) {
		t.Errorf("Blend(red!-20!blue!-10) = %v, want [-0.2 0 1.2 -0.1]", got)
	}
}

func TestBlendComplementary(t *testing.T) {
	m := New(WithResolver(stubResolver))

	got, err := m.Blend("red!50!blue!40", true)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}
	// [0.5 0 0.5]: lo 0, hi 0.5.
	if !colorNear(got, Color{0, 0.5, 0, 0.4}) {
		t.Errorf("complementary Blend = %v, want [0 0.5 0 0.4]", got)
	}

	plain, _ := m.Blend("slate!100!sand", false)
	comp, _ := m.Blend("slate!100!sand", true)
	if !colorNear(comp, Complement(plain)) {
		t.Errorf("complementary Blend %v != Complement(plain) %v", comp, Complement(plain))
	}
}

func TestComplementIsInvolution(t *testing.T) {
	inputs := []Color{
		{0.2, 0.4, 0.6, 1},
		{0.9, 0.7, 0.3, 0.5},
		{1, 0, 0, 1},
		{0.25, 0.25, 0.25, 0},
		{1.5, -0.5, 0.3, 2},
	}

	for _, c := range inputs {
		t.Run(fmt.Sprint(c), func(t *testing.T) {
			once := Complement(c)
			if once[3] != c[3] {
				t.Errorf("Complement changed alpha: %v -> %v", c[3], once[3])
			}
			twice := Complement(once)
			if !colorNear(twice, c) {
				t.Errorf("Complement(Complement(%v)) = %v", c, twice)
			}
		})
	}
}

func TestComplementUsesOriginalChannels(t *testing.T) {
	// Sequential in-place assignment would give [0.2 0.4 0.2].
	got := Complement(Color{0.2, 0.4, 0.6, 1})
	if !colorNear(got, Color{0.6, 0.4, 0.2, 1}) {
		t.Errorf("Complement = %v, want [0.6 0.4 0.2 1]", got)
	}
}

func TestBlendErrors(t *testing.T) {
	m := New(WithResolver(stubResolver))

	tests := []struct {
		name      string
		spec      string
		wantErr   error
		wantField string
	}{
		{"missing second color", "red!50", ErrMalformedSpec, FieldSpec},
		{"single token", "red", ErrMalformedSpec, FieldSpec},
		{"empty", "", ErrMalformedSpec, FieldSpec},
		{"non-integer proportion", "red!half!blue", ErrInvalidProportion, FieldProportion},
		{"float proportion", "red!50.5!blue", ErrInvalidProportion, FieldProportion},
		{"empty proportion", "red!!blue", ErrInvalidProportion, FieldProportion},
		{"non-integer alpha", "red!50!blue!x", ErrInvalidAlpha, FieldAlpha},
		{"float alpha", "red!50!blue!0.5", ErrInvalidAlpha, FieldAlpha},
		{"unknown first", "mauve!50!blue", errNoSuchColor, FieldFirstColor},
		{"unknown second", "red!50!mauve", errNoSuchColor, FieldSecondColor},
		{"names checked before proportion", "mauve!half!blue", errNoSuchColor, FieldFirstColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Blend(tt.spec, false)
			if err == nil {
				t.Fatalf("Blend(%q) = %v, expected error", tt.spec, got)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Blend(%q) error = %v, want %v", tt.spec, err, tt.wantErr)
			}
			var specErr *SpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("Blend(%q) error %T is not a *SpecError", tt.spec, err)
			}
			if specErr.Field != tt.wantField {
				t.Errorf("SpecError.Field = %q, want %q", specErr.Field, tt.wantField)
			}
			if specErr.Spec != tt.spec {
				t.Errorf("SpecError.Spec = %q, want %q", specErr.Spec, tt.spec)
			}
		})
	}
}

func TestBlendProportionErrorWrapsNumError(t *testing.T) {
	_, err := New(WithResolver(stubResolver)).Blend("red!x!blue", false)

	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("error %v does not wrap *strconv.NumError", err)
	}
	if numErr.Num != "x" {
		t.Errorf("NumError.Num = %q, want %q", numErr.Num, "x")
	}
}

func TestBlendDefaultPalette(t *testing.T) {
	got, err := Blend("red!50!blue", false)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}
	if got != (Color{0.5, 0, 0.5, 1}) {
		t.Errorf("Blend(red!50!blue) = %v, want [0.5 0 0.5 1]", got)
	}

	_, err = Blend("red!50!notacolor", false)
	if !errors.Is(err, palette.ErrUnknownColor) {
		t.Errorf("Blend with unknown name error = %v, want palette.ErrUnknownColor", err)
	}
}

func TestBlendWithPalette(t *testing.T) {
	p := palette.New()
	if err := p.Set("brand", RGB{0.2, 0.4, 0.6}); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	m := New(WithPalette(p))
	got, err := m.Blend("brand!100!white", false)
	if err != nil {
		t.Fatalf("Blend error: %v", err)
	}
	if got != (Color{0.2, 0.4, 0.6, 1}) {
		t.Errorf("Blend(brand!100!white) = %v", got)
	}
	if m.Resolver() != Resolver(p) {
		t.Error("Resolver() should return the configured palette")
	}
}

func TestBlendSpecMatchesBlend(t *testing.T) {
	m := New(WithResolver(stubResolver))

	for _, raw := range []string{"slate!35!sand", "red!50!blue!75", "sand!0!red!10"} {
		for _, comp := range []bool{false, true} {
			spec, err := ParseSpec(raw)
			if err != nil {
				t.Fatalf("ParseSpec(%q) error: %v", raw, err)
			}
			want, _ := m.Blend(raw, comp)
			got, err := m.BlendSpec(spec, comp)
			if err != nil {
				t.Fatalf("BlendSpec(%q) error: %v", raw, err)
			}
			if got != want {
				t.Errorf("BlendSpec(%q, %v) = %v, Blend = %v", raw, comp, got, want)
			}
		}
	}

	_, err := m.BlendSpec(Spec{First: "red", Proportion: 50, Second: "mauve"}, false)
	if !errors.Is(err, errNoSuchColor) {
		t.Errorf("BlendSpec unknown color error = %v", err)
	}
}

func TestBlendAll(t *testing.T) {
	m := New(WithResolver(stubResolver))

	colors, err := m.BlendAll([]string{"red!100!blue", "red!0!blue"}, false)
	if err != nil {
		t.Fatalf("BlendAll error: %v", err)
	}
	if len(colors) != 2 || colors[0] != (Color{1, 0, 0, 1}) || colors[1] != (Color{0, 0, 1, 1}) {
		t.Errorf("BlendAll = %v", colors)
	}

	colors, err = m.BlendAll([]string{"red!100!blue", "red!50", "red!0!blue"}, false)
	if !errors.Is(err, ErrMalformedSpec) {
		t.Fatalf("BlendAll error = %v, want ErrMalformedSpec", err)
	}
	if !strings.HasPrefix(err.Error(), "spec 1:") {
		t.Errorf("BlendAll error %q should name index 1", err)
	}
	if len(colors) != 1 {
		t.Errorf("BlendAll returned %d colors before failure, want 1", len(colors))
	}
}

func TestMix(t *testing.T) {
	got := Mix(RGB{1, 0.5, 0}, RGB{0, 0.5, 1}, 25)
	want := RGB{0.25, 0.5, 0.75}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Fatalf("Mix = %v, want %v", got, want)
		}
	}
}

func TestColorConversions(t *testing.T) {
	c := Color{0.5, 0, 0.5, 0.5}

	if c.RGB() != (RGB{0.5, 0, 0.5}) {
		t.Errorf("RGB() = %v", c.RGB())
	}
	if got := c.Hex(); got != "#800080" {
		t.Errorf("Hex() = %q, want #800080", got)
	}
	if got := c.NRGBA(); got.R != 128 || got.G != 0 || got.B != 128 || got.A != 128 {
		t.Errorf("NRGBA() = %v, want {128 0 128 128}", got)
	}

	out := Color{1.5, -0.5, 0.2, 2}
	if got := out.Hex(); got != "#ff0033" {
		t.Errorf("Hex() of out-of-range color = %q, want #ff0033", got)
	}
	if got := out.NRGBA(); got.R != 255 || got.G != 0 || got.A != 255 {
		t.Errorf("NRGBA() of out-of-range color = %v", got)
	}
	if got := (Color{math.NaN(), 0, 0, 1}).NRGBA(); got.R != 0 {
		t.Errorf("NRGBA() of NaN channel = %v, want R 0", got)
	}
}

func TestColorString(t *testing.T) {
	c := Color{0.5, 0, 0.5, 1}

	var _ fmt.Stringer = c
	if got := c.String(); got != "[0.5 0 0.5 1]" {
		t.Errorf("String() = %q, want [0.5 0 0.5 1]", got)
	}
	if got := fmt.Sprint(c); got != c.String() {
		t.Errorf("fmt.Sprint = %q, want %q", got, c.String())
	}
	if got := (Color{1.5, -0.25, 0, 0.5}).String(); got != "[1.5 -0.25 0 0.5]" {
		t.Errorf("String() of out-of-range color = %q", got)
	}
}

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, level+": "+msg)
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg) }

func TestMixerLogging(t *testing.T) {
	logger := &recordingLogger{}
	m := New(WithResolver(stubResolver), WithLogger(logger))

	_, _ = m.Blend("red!50!blue", false)
	_, _ = m.Blend("red!50!mauve", false)

	want := []string{"DEBUG: blended color", "DEBUG: color lookup failed"}
	if len(logger.msgs) != len(want) {
		t.Fatalf("logged %v, want %v", logger.msgs, want)
	}
	for i := range want {
		if logger.msgs[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, logger.msgs[i], want[i])
		}
	}
}

func TestBlendSpecBookkeeping(t *testing.T) {
	logger := &recordingLogger{}
	metrics := NewMetrics()
	m := New(WithResolver(stubResolver), WithLogger(logger), WithMetrics(metrics))

	if _, err := m.BlendSpec(Spec{First: "red", Proportion: 50, Second: "blue"}, true); err != nil {
		t.Fatalf("BlendSpec failed: %v", err)
	}
	if _, err := m.BlendSpec(Spec{First: "mauve", Proportion: 50, Second: "blue"}, false); err == nil {
		t.Fatal("expected error for unknown color")
	}

	snap := metrics.Snapshot()
	if snap.Blends != 1 || snap.Failures != 1 || snap.Complementary != 1 || snap.LookupFailures != 1 {
		t.Errorf("snapshot = %+v, want 1 blend, 1 failure, 1 complementary, 1 lookup failure", snap)
	}

	want := []string{"DEBUG: blended color", "DEBUG: color lookup failed"}
	if len(logger.msgs) != len(want) {
		t.Fatalf("logged %v, want %v", logger.msgs, want)
	}
	for i := range want {
		if logger.msgs[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, logger.msgs[i], want[i])
		}
	}
}

func TestNilOptionsIgnored(t *testing.T) {
	m := New(WithResolver(nil), WithLogger(nil), WithPalette(nil))
	if m.resolver == nil || m.logger == nil {
		t.Fatal("nil options should keep defaults")
	}
	if _, err := m.Blend("red!50!blue", false); err != nil {
		t.Errorf("Blend error: %v", err)
	}
}

func TestBlendConcurrent(t *testing.T) {
	m := New(WithResolver(stubResolver))
	var wg sync.WaitGroup

	for i := 0; i <= 100; i++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			got, err := m.Blend(fmt.Sprintf("red!%d!blue", p), false)
			if err != nil {
				t.Errorf("Blend error: %v", err)
				return
			}
			if math.Abs(got[0]+got[2]-1) > tolerance {
				t.Errorf("red!%d!blue = %v, red+blue should be 1", p, got)
			}
		}(i)
	}
	wg.Wait()
}
