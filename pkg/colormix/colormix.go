package colormix

import (
	"fmt"
	"time"

	"github.com/opd-ai/go-colormix/internal/palette"
)

// Mixer blends color specs using a Resolver for name lookup.
// A Mixer is safe for concurrent use as long as its Resolver is.
type Mixer struct {
	resolver Resolver
	logger   Logger
	metrics  *Metrics
}

// New creates a Mixer. Without options it resolves names through
// palette.Default and discards log output.
func New(opts ...Option) *Mixer {
	m := &Mixer{
		resolver: palette.Default(),
		logger:   NopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var defaultMixer = New()

// Blend evaluates spec with the default Mixer.
func Blend(spec string, complementary bool) (Color, error) {
	return defaultMixer.Blend(spec, complementary)
}

// Metrics returns the metrics attached with WithMetrics, or nil.
func (m *Mixer) Metrics() *Metrics {
	return m.metrics
}

// Resolver returns the mixer's name lookup.
func (m *Mixer) Resolver() Resolver {
	return m.resolver
}

// Blend evaluates a color spec of the form "name1!proportion!name2[!alpha]".
//
// Both names are resolved before the proportion is parsed, so a spec with an
// unknown name and a bad proportion reports the name. If complementary is
// set, the mixed RGB channels are replaced by their complement.
func (m *Mixer) Blend(spec string, complementary bool) (Color, error) {
	start := time.Now()
	result, err := m.blend(spec, complementary)
	m.record(spec, complementary, start, result, err)
	return result, err
}

// record logs and counts one finished blend.
func (m *Mixer) record(spec string, complementary bool, start time.Time, result Color, err error) {
	if m.metrics != nil {
		m.metrics.recordBlend(time.Since(start), complementary, err)
	}
	if err == nil {
		m.logger.Debug("blended color", "spec", spec, "complementary", complementary, "result", result)
	}
}

func (m *Mixer) blend(spec string, complementary bool) (Color, error) {
	tokens, err := splitSpec(spec)
	if err != nil {
		return Color{}, err
	}

	c1, err := m.resolve(spec, FieldFirstColor, tokens[0])
	if err != nil {
		return Color{}, err
	}
	c2, err := m.resolve(spec, FieldSecondColor, tokens[2])
	if err != nil {
		return Color{}, err
	}

	proportion, err := parseProportion(spec, tokens[1])
	if err != nil {
		return Color{}, err
	}

	rgb := Mix(c1, c2, proportion)
	result := Color{rgb[0], rgb[1], rgb[2], 1}

	if len(tokens) == 4 {
		alpha, err := parseAlpha(spec, tokens[3])
		if err != nil {
			return Color{}, err
		}
		result[3] = float64(alpha) / 100
	}

	if complementary {
		result = Complement(result)
	}

	return result, nil
}

// BlendSpec blends an already parsed spec.
func (m *Mixer) BlendSpec(s Spec, complementary bool) (Color, error) {
	start := time.Now()
	raw := s.String()
	result, err := m.blendSpec(raw, s, complementary)
	m.record(raw, complementary, start, result, err)
	return result, err
}

func (m *Mixer) blendSpec(raw string, s Spec, complementary bool) (Color, error) {
	c1, err := m.resolve(raw, FieldFirstColor, s.First)
	if err != nil {
		return Color{}, err
	}
	c2, err := m.resolve(raw, FieldSecondColor, s.Second)
	if err != nil {
		return Color{}, err
	}

	rgb := Mix(c1, c2, s.Proportion)
	result := Color{rgb[0], rgb[1], rgb[2], s.AlphaValue()}
	if complementary {
		result = Complement(result)
	}
	return result, nil
}

// BlendAll blends every spec in order and stops at the first failure.
// The returned error names the index of the failing spec.
func (m *Mixer) BlendAll(specs []string, complementary bool) ([]Color, error) {
	out := make([]Color, 0, len(specs))
	for i, spec := range specs {
		c, err := m.Blend(spec, complementary)
		if err != nil {
			return out, fmt.Errorf("spec %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Mixer) resolve(spec, field, name string) (RGB, error) {
	c, err := m.resolver.ToRGB(name)
	if err != nil {
		m.logger.Debug("color lookup failed", "spec", spec, "field", field, "name", name, "error", err)
		if m.metrics != nil {
			m.metrics.recordLookupFailure()
		}
		return RGB{}, &SpecError{Spec: spec, Field: field, Err: err}
	}
	return c, nil
}
