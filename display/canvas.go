package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Canvas adapts a Frame to drivers.Displayer so the tinyfont toolchain (and
// anything else speaking the drivers interface) can draw on the matrix.
// Out-of-bounds pixels are clipped, matching Displayer conventions.
type Canvas struct {
	f *Frame
}

func NewCanvas(f *Frame) *Canvas {
	return &Canvas{f: f}
}

func (c *Canvas) Size() (int16, int16) { return Cols, Rows }

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	on := col.R != 0 || col.G != 0 || col.B != 0
	// Set rejects out-of-range coordinates; a Displayer clips instead.
	_ = c.f.Set(int(y), int(x), on)
}

func (c *Canvas) Display() error { return nil }

// Fonter adapts Font to tinyfont.Fonter.
//
// Concurrent access is not safe due to internal glyph reuse.
type Fonter struct {
	font Font
	g    fontGlyph
}

var _ tinyfont.Fonter = (*Fonter)(nil)

func NewFonter(f Font) *Fonter {
	return &Fonter{font: f}
}

func (f *Fonter) GetYAdvance() uint8 { return Rows }

func (f *Fonter) GetGlyph(r rune) tinyfont.Glypher {
	f.g.font = f.font
	f.g.r = r
	return &f.g
}

type fontGlyph struct {
	font Font
	r    rune
}

func (g *fontGlyph) Draw(d drivers.Displayer, x, y int16, c color.RGBA) {
	frame, err := g.font.Glyph(g.r)
	if err != nil {
		return
	}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if on, _ := frame.Get(row, col); on {
				d.SetPixel(x+int16(col), y+int16(row)-int16(Rows-1), c)
			}
		}
	}
}

func (g *fontGlyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    Cols,
		Height:   Rows,
		XAdvance: Cols + 1,
		XOffset:  0,
		YOffset:  -(Rows - 1),
	}
}
