package display

import "fmt"

// maxBitmapSide keeps a bitmap row packed in one byte, like a frame row.
const maxBitmapSide = 8

// Bitmap is an immutable width x height pixel source, typically a package
// constant. Composition methods return new bitmaps; nothing mutates in
// place.
type Bitmap struct {
	w, h int
	rows [maxBitmapSide]uint8
}

// NewBitmap packs the given rows. Each byte carries the pattern in its low
// width bits, leftmost pixel highest, as in FrameOf.
func NewBitmap(width, height int, rows []uint8) (Bitmap, error) {
	if width <= 0 || width > maxBitmapSide || height <= 0 || height > maxBitmapSide {
		return Bitmap{}, fmt.Errorf("display: bitmap %dx%d: %w", width, height, ErrDimensionMismatch)
	}
	if len(rows) != height {
		return Bitmap{}, fmt.Errorf("display: bitmap %dx%d with %d rows: %w", width, height, len(rows), ErrDimensionMismatch)
	}
	b := Bitmap{w: width, h: height}
	for i, r := range rows {
		b.rows[i] = r << (8 - width)
	}
	return b, nil
}

func mustBitmap(width, height int, rows ...uint8) Bitmap {
	b, err := NewBitmap(width, height, rows)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Bitmap) Width() int  { return b.w }
func (b Bitmap) Height() int { return b.h }

// At reads one pixel.
func (b Bitmap) At(row, col int) (bool, error) {
	if row < 0 || row >= b.h || col < 0 || col >= b.w {
		return false, fmt.Errorf("display: bitmap at (%d,%d): %w", row, col, ErrOutOfRange)
	}
	return b.rows[row]&(1<<(7-col)) != 0, nil
}

// ToFrame places the bitmap at the matrix origin. A bitmap larger than the
// matrix does not fit and is rejected, never cropped.
func (b Bitmap) ToFrame() (Frame, error) {
	if b.w > Cols || b.h > Rows {
		return Frame{}, fmt.Errorf("display: bitmap %dx%d on %dx%d matrix: %w", b.w, b.h, Cols, Rows, ErrDimensionMismatch)
	}
	var f Frame
	for r := 0; r < b.h; r++ {
		f.rows[r] = b.rows[r] &^ rowSlack
	}
	return f, nil
}

// Or combines two bitmaps of identical dimensions.
func (b Bitmap) Or(other Bitmap) (Bitmap, error) {
	if b.w != other.w || b.h != other.h {
		return Bitmap{}, fmt.Errorf("display: or %dx%d with %dx%d: %w", b.w, b.h, other.w, other.h, ErrDimensionMismatch)
	}
	out := b
	for i := 0; i < b.h; i++ {
		out.rows[i] |= other.rows[i]
	}
	return out, nil
}

// ShiftLeft returns the bitmap moved one column left, filling the right
// edge with fill.
func (b Bitmap) ShiftLeft(fill bool) Bitmap {
	out := b
	mask := b.rowMask()
	for i := 0; i < b.h; i++ {
		out.rows[i] = (b.rows[i] << 1) & mask
		if fill {
			out.rows[i] |= 1 << (8 - b.w)
		}
	}
	return out
}

// ShiftRight returns the bitmap moved one column right, filling the left
// edge with fill.
func (b Bitmap) ShiftRight(fill bool) Bitmap {
	out := b
	mask := b.rowMask()
	for i := 0; i < b.h; i++ {
		out.rows[i] = (b.rows[i] >> 1) & mask
		if fill {
			out.rows[i] |= 1 << 7
		}
	}
	return out
}

func (b Bitmap) rowMask() uint8 {
	return ^uint8(0) << (8 - b.w)
}
