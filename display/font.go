package display

import "fmt"

// FallbackPolicy is the build-time choice for characters the font does not
// cover: either an explicit error or a blank frame. There is no implicit
// default behavior; constructors take the policy.
type FallbackPolicy uint8

const (
	FallbackError FallbackPolicy = iota
	FallbackBlank
)

// Font looks glyphs up in the fixed 5x5 table.
type Font struct {
	fallback FallbackPolicy
}

func NewFont(policy FallbackPolicy) Font {
	return Font{fallback: policy}
}

// Glyph returns the frame for r. Characters outside printable ASCII resolve
// per the fallback policy: ErrUnsupportedGlyph or a blank frame.
func (f Font) Glyph(r rune) (Frame, error) {
	idx := int(r) - printableStart
	if idx < 0 || idx >= printableCount {
		if f.fallback == FallbackBlank {
			return Frame{}, nil
		}
		return Frame{}, fmt.Errorf("display: glyph %q: %w", r, ErrUnsupportedGlyph)
	}
	g := pendolino3[idx]
	return FrameOf(g[0]&0x1f, g[1]&0x1f, g[2]&0x1f, g[3]&0x1f, g[4]&0x1f), nil
}

// Predefined glyphs carried over from the original symbol set.
var (
	ArrowLeft = FrameOf(
		0b00100,
		0b01000,
		0b11111,
		0b01000,
		0b00100)
	ArrowRight = FrameOf(
		0b00100,
		0b00010,
		0b11111,
		0b00010,
		0b00100)
	CheckMark = FrameOf(
		0b00000,
		0b00001,
		0b00010,
		0b10100,
		0b01000)
	CrossMark = FrameOf(
		0b00000,
		0b01010,
		0b00100,
		0b01010,
		0b00000)
	Heart = FrameOf(
		0b01010,
		0b11111,
		0b11111,
		0b01110,
		0b00100)
)
