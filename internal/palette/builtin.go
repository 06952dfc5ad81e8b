package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
	"golang.org/x/image/colornames"
)

// baseColors are the single-letter shorthands.
var baseColors = map[string]RGB{
	"b": {0, 0, 1},
	"g": {0, 0.5, 0},
	"r": {1, 0, 0},
	"c": {0, 0.75, 0.75},
	"m": {0.75, 0, 0.75},
	"y": {0.75, 0.75, 0},
	"k": {0, 0, 0},
	"w": {1, 1, 1},
}

// tableauOrder is the order of the Tableau 10 palette, which is also the
// default color cycle addressed by "C0" through "C9".
var tableauOrder = []string{
	"tab:blue", "tab:orange", "tab:green", "tab:red", "tab:purple",
	"tab:brown", "tab:pink", "tab:gray", "tab:olive", "tab:cyan",
}

var tableauHex = map[string]string{
	"tab:blue":   "#1f77b4",
	"tab:orange": "#ff7f0e",
	"tab:green":  "#2ca02c",
	"tab:red":    "#d62728",
	"tab:purple": "#9467bd",
	"tab:brown":  "#8c564b",
	"tab:pink":   "#e377c2",
	"tab:gray":   "#7f7f7f",
	"tab:olive":  "#bcbd22",
	"tab:cyan":   "#17becf",
}

var tableauColors = buildTableau()

func buildTableau() map[string]RGB {
	m := make(map[string]RGB, len(tableauHex)+1)
	for name, hex := range tableauHex {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic(fmt.Sprintf("palette: bad tableau entry %s: %v", name, err))
		}
		m[name] = RGB{c.R, c.G, c.B}
	}
	m["tab:grey"] = m["tab:gray"]
	return m
}

// Builtin resolves a color token without consulting any custom entries.
// Recognized forms, in lookup order:
//   - grey level: a decimal string in [0, 1], e.g. "0.75"
//   - single-letter base colors: b g r c m y k w
//   - Tableau colors "tab:blue" ... "tab:cyan" and cycle references "C0".."C9"
//   - CSS/X11 color names ("red", "Light Blue", "darkgrey")
//   - CSS color syntax: "#rgb", "#rrggbb", "rgb()", "hsl()", "hwb()"
func Builtin(name string) (RGB, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return RGB{}, ErrEmptyName
	}

	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if !(v >= 0 && v <= 1) {
			return RGB{}, fmt.Errorf("%w: grey level %q outside [0, 1]", ErrUnknownColor, name)
		}
		return RGB{v, v, v}, nil
	}

	key := strings.ToLower(trimmed)
	if c, ok := baseColors[key]; ok {
		return c, nil
	}
	if c, ok := tableauColors[key]; ok {
		return c, nil
	}
	if c, ok := cycleColor(trimmed); ok {
		return c, nil
	}
	if c, ok := colornames.Map[strings.ReplaceAll(key, " ", "")]; ok {
		return FromColor(c), nil
	}

	css, err := csscolorparser.Parse(trimmed)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return RGB{css.R, css.G, css.B}, nil
}

// cycleColor resolves "CN" references into the Tableau cycle. Indices wrap.
func cycleColor(s string) (RGB, bool) {
	if len(s) < 2 || s[0] != 'C' {
		return RGB{}, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || strings.HasPrefix(s[1:], "+") {
		return RGB{}, false
	}
	return tableauColors[tableauOrder[n%len(tableauOrder)]], true
}

// FromColor converts an image/color value to normalized RGB, dropping alpha.
// Premultiplied colors are un-premultiplied first.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{
		float64(n.R) / 255,
		float64(n.G) / 255,
		float64(n.B) / 255,
	}
}
