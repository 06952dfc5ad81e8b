// Package swatch renders blended colors as a labelled PNG sheet.
package swatch

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-colormix/pkg/colormix"
)

// ErrNoEntries is returned when there is nothing to render.
var ErrNoEntries = errors.New("swatch: no entries to render")

// Entry is one cell of the sheet.
type Entry struct {
	Label string
	Color colormix.Color
}

// Options controls the sheet layout. Zero fields other than Gap take the
// values from DefaultOptions.
type Options struct {
	// CellWidth and CellHeight size the color area of each cell in pixels.
	CellWidth  int
	CellHeight int
	// Columns is the number of cells per row.
	Columns int
	// Gap is the spacing between cells and around the sheet.
	Gap int
	// CheckerSize is the square size of the pattern drawn under
	// translucent colors.
	CheckerSize int
	// Background fills the sheet and the label bands.
	Background color.Color
	// LabelColor is the text color.
	LabelColor color.Color
	// Face draws the labels. A Face must not be shared between
	// concurrent Draw calls.
	Face font.Face
}

// DefaultOptions returns the layout used by the CLI, with its own label face.
func DefaultOptions() Options {
	o := defaultLayout()
	o.Face = DefaultFace()
	return o
}

func defaultLayout() Options {
	return Options{
		CellWidth:   112,
		CellHeight:  64,
		Columns:     4,
		Gap:         8,
		CheckerSize: 8,
		Background:  color.White,
		LabelColor:  color.Black,
	}
}

var (
	checkerLight = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	checkerDark  = color.NRGBA{0xcc, 0xcc, 0xcc, 0xff}
)

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// DefaultFace returns a new Go Regular face at 12pt, or the 7x13 bitmap
// face if the TrueType data cannot be parsed. TrueType faces are not safe
// for concurrent use, so each call returns a fresh one.
func DefaultFace() font.Face {
	f, err := goRegular()
	if err != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    12,
		Hinting: font.HintingFull,
	})
}

func (o Options) withDefaults() Options {
	def := defaultLayout()
	if o.CellWidth <= 0 {
		o.CellWidth = def.CellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = def.CellHeight
	}
	if o.Columns <= 0 {
		o.Columns = def.Columns
	}
	if o.Gap < 0 {
		o.Gap = 0
	}
	if o.CheckerSize <= 0 {
		o.CheckerSize = def.CheckerSize
	}
	if o.Background == nil {
		o.Background = def.Background
	}
	if o.LabelColor == nil {
		o.LabelColor = def.LabelColor
	}
	if o.Face == nil {
		o.Face = DefaultFace()
	}
	return o
}

// labelHeight is the height of the text band under each cell.
func labelHeight(face font.Face) int {
	return face.Metrics().Height.Ceil() + 4
}

// CellBounds returns the color area of cell i within a sheet drawn with opts.
func CellBounds(i int, opts Options) image.Rectangle {
	opts = opts.withDefaults()
	col, row := i%opts.Columns, i/opts.Columns
	x := opts.Gap + col*(opts.CellWidth+opts.Gap)
	y := opts.Gap + row*(opts.CellHeight+labelHeight(opts.Face)+opts.Gap)
	return image.Rect(x, y, x+opts.CellWidth, y+opts.CellHeight)
}

// Draw lays entries out on a new image.
func Draw(entries []Entry, opts Options) (*image.RGBA, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	opts = opts.withDefaults()

	cols := min(opts.Columns, len(entries))
	rows := (len(entries) + opts.Columns - 1) / opts.Columns
	width := opts.Gap + cols*(opts.CellWidth+opts.Gap)
	height := opts.Gap + rows*(opts.CellHeight+labelHeight(opts.Face)+opts.Gap)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(opts.Background)
	dc.Clear()
	dc.SetFontFace(opts.Face)

	for i, e := range entries {
		cell := CellBounds(i, opts)
		drawChecker(dc, cell, opts.CheckerSize)

		dc.SetColor(e.Color.NRGBA())
		fillRect(dc, cell)

		drawLabel(dc, e.Label, cell, opts)
	}
	return img, nil
}

// Render draws entries and writes the sheet to w as PNG.
func Render(w io.Writer, entries []Entry, opts Options) error {
	img, err := Draw(entries, opts)
	if err != nil {
		return err
	}
	if err := gg.NewContextForRGBA(img).EncodePNG(w); err != nil {
		return fmt.Errorf("swatch: encode png: %w", err)
	}
	return nil
}

func fillRect(dc *gg.Context, r image.Rectangle) {
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Fill()
}

func drawChecker(dc *gg.Context, r image.Rectangle, size int) {
	for y := r.Min.Y; y < r.Max.Y; y += size {
		for x := r.Min.X; x < r.Max.X; x += size {
			c := checkerLight
			if ((x-r.Min.X)/size+(y-r.Min.Y)/size)%2 == 1 {
				c = checkerDark
			}
			dc.SetColor(c)
			fillRect(dc, image.Rect(x, y, x+size, y+size).Intersect(r))
		}
	}
}

// drawLabel writes label under cell, shortened with "..." to fit the cell width.
func drawLabel(dc *gg.Context, label string, cell image.Rectangle, opts Options) {
	measure := func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}
	label = fitLabel(measure, label, float64(cell.Dx()))
	if label == "" {
		return
	}

	baseline := cell.Max.Y + 2 + opts.Face.Metrics().Ascent.Ceil()
	dc.SetColor(opts.LabelColor)
	dc.DrawString(label, float64(cell.Min.X), float64(baseline))
}

func fitLabel(measure func(string) float64, label string, width float64) string {
	if measure(label) <= width {
		return label
	}
	runes := []rune(label)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(runes) + "..."
		if measure(s) <= width {
			return s
		}
	}
	return ""
}
