// Package display holds the LED matrix data model (Frame, Bitmap, Animation,
// Font, Brightness) and the charlieplexed LedMatrix driver.
package display

import (
	"errors"
	"fmt"
	"strings"
)

// Matrix geometry. The data model is sized at build time; a frame row packs
// into one byte.
const (
	Rows = 5
	Cols = 5
)

var (
	// ErrOutOfRange reports a coordinate outside the matrix. It is local and
	// recoverable; coordinates are never silently clamped.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrDimensionMismatch reports a bitmap/frame size mismatch during
	// composition.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupportedGlyph reports a font lookup miss.
	ErrUnsupportedGlyph = errors.New("unsupported glyph")
)

// Frame is the Rows x Cols pixel grid shown on the matrix. Each row packs
// MSB-first into one byte: bit 7 is the leftmost column.
//
// Frames are comparable values; an empty Frame literal is the all-off frame.
type Frame struct {
	rows [Rows]uint8
}

// FrameOf builds a frame from one byte per row with the pixel pattern in the
// low Cols bits, leftmost pixel in the highest of them (the 0b10001 style
// used by glyph tables).
func FrameOf(r0, r1, r2, r3, r4 uint8) Frame {
	var f Frame
	in := [Rows]uint8{r0, r1, r2, r3, r4}
	for i, b := range in {
		f.rows[i] = b << (8 - Cols)
	}
	return f
}

func inRange(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// Set writes one pixel.
func (f *Frame) Set(row, col int, on bool) error {
	if !inRange(row, col) {
		return fmt.Errorf("display: set (%d,%d): %w", row, col, ErrOutOfRange)
	}
	mask := uint8(1) << (7 - col)
	if on {
		f.rows[row] |= mask
	} else {
		f.rows[row] &^= mask
	}
	return nil
}

// Get reads one pixel.
func (f Frame) Get(row, col int) (bool, error) {
	if !inRange(row, col) {
		return false, fmt.Errorf("display: get (%d,%d): %w", row, col, ErrOutOfRange)
	}
	return f.rows[row]&(1<<(7-col)) != 0, nil
}

// Clear turns every pixel off.
func (f *Frame) Clear() {
	f.rows = [Rows]uint8{}
}

// Or merges the other frame pixel-wise. Frames share one fixed geometry, so
// dimensions always match.
func (f *Frame) Or(other Frame) {
	for i := range f.rows {
		f.rows[i] |= other.rows[i]
	}
}

// ShiftLeft moves every column one position left, dropping the leftmost
// column and filling the vacated right edge with fill.
func (f *Frame) ShiftLeft(fill bool) {
	for i := range f.rows {
		f.rows[i] <<= 1
		f.rows[i] &^= rowSlack
		if fill {
			f.rows[i] |= 1 << (8 - Cols)
		}
	}
}

// ShiftRight moves every column one position right, dropping the rightmost
// column and filling the vacated left edge with fill.
func (f *Frame) ShiftRight(fill bool) {
	for i := range f.rows {
		f.rows[i] >>= 1
		f.rows[i] &^= rowSlack
		if fill {
			f.rows[i] |= 1 << 7
		}
	}
}

// rowSlack masks the unused low bits of a packed row.
const rowSlack = uint8(1)<<(8-Cols) - 1

// String renders rows of 0 and 1, for test failures and debug logs.
func (f Frame) String() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if f.rows[r]&(1<<(7-c)) != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		if r < Rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
