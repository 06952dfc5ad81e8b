package colormix

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/opd-ai/go-colormix/internal/palette"
)

// RGB is a three-channel color as returned by a Resolver.
type RGB = palette.RGB

// Color is a blended color ordered [r, g, b, a]. Channels are not clamped.
type Color [4]float64

// RGB returns the red, green and blue channels.
func (c Color) RGB() RGB {
	return RGB{c[0], c[1], c[2]}
}

// Alpha returns the alpha channel.
func (c Color) Alpha() float64 {
	return c[3]
}

// Hex returns the color as "#rrggbb", clamping channels to [0, 1].
// Alpha is not encoded.
func (c Color) Hex() string {
	return colorful.Color{R: c[0], G: c[1], B: c[2]}.Clamped().Hex()
}

// NRGBA converts the color to 8-bit non-premultiplied form, clamping every
// channel to [0, 1] first.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c[0]),
		G: to8(c[1]),
		B: to8(c[2]),
		A: to8(c[3]),
	}
}

// String formats the channels as "[r g b a]".
func (c Color) String() string {
	return fmt.Sprint([4]float64(c))
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Mix interpolates two colors channel by channel, weighting c1 by
// proportion percent and c2 by the remainder.
func Mix(c1, c2 RGB, proportion int) RGB {
	p := float64(proportion)
	q := float64(100 - proportion)

	var out RGB
	for i := range out {
		out[i] = c1[i]*p/100 + c2[i]*q/100
	}
	return out
}

// Complement reflects each RGB channel about the midpoint of the smallest
// and largest channel. Applying it twice restores the input. Alpha is kept.
func Complement(c Color) Color {
	lo := math.Min(c[0], math.Min(c[1], c[2]))
	hi := math.Max(c[0], math.Max(c[1], c[2]))

	return Color{hi + lo - c[0], hi + lo - c[1], hi + lo - c[2], c[3]}
}
