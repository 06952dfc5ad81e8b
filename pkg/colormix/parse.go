package colormix

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator delimits the fields of a color spec.
const Separator = "!"

// Spec is the parsed form of a color spec string.
type Spec struct {
	First      string
	Proportion int
	Second     string
	// Alpha is the alpha percentage; meaningful only when HasAlpha is set.
	Alpha    int
	HasAlpha bool
}

// ParseSpec parses the fields of a color spec without resolving the names.
// Fields past the fourth are ignored, and so is the alpha field in that case.
func ParseSpec(s string) (Spec, error) {
	tokens, err := splitSpec(s)
	if err != nil {
		return Spec{}, err
	}

	p, err := parseProportion(s, tokens[1])
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{First: tokens[0], Proportion: p, Second: tokens[2]}
	if len(tokens) == 4 {
		a, err := parseAlpha(s, tokens[3])
		if err != nil {
			return Spec{}, err
		}
		spec.Alpha = a
		spec.HasAlpha = true
	}
	return spec, nil
}

// String renders the spec back into its "!"-delimited form.
func (s Spec) String() string {
	out := s.First + Separator + strconv.Itoa(s.Proportion) + Separator + s.Second
	if s.HasAlpha {
		out += Separator + strconv.Itoa(s.Alpha)
	}
	return out
}

// AlphaValue returns the alpha channel the spec produces: Alpha/100, or 1.
func (s Spec) AlphaValue() float64 {
	if !s.HasAlpha {
		return 1
	}
	return float64(s.Alpha) / 100
}

func splitSpec(s string) ([]string, error) {
	tokens := strings.Split(s, Separator)
	if len(tokens) < 3 {
		return nil, &SpecError{
			Spec:  s,
			Field: FieldSpec,
			Err:   fmt.Errorf("%w: want name!proportion!name[!alpha], got %d field(s)", ErrMalformedSpec, len(tokens)),
		}
	}
	return tokens, nil
}

func parseProportion(spec, token string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, &SpecError{Spec: spec, Field: FieldProportion, Err: fmt.Errorf("%w: %w", ErrInvalidProportion, err)}
	}
	return p, nil
}

func parseAlpha(spec, token string) (int, error) {
	a, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, &SpecError{Spec: spec, Field: FieldAlpha, Err: fmt.Errorf("%w: %w", ErrInvalidAlpha, err)}
	}
	return a, nil
}
