package display

import (
	"errors"
	"testing"
)

func TestNewBitmapValidation(t *testing.T) {
	if _, err := NewBitmap(0, 3, []uint8{0, 0, 0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("zero width: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := NewBitmap(9, 3, []uint8{0, 0, 0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("wide: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := NewBitmap(3, 3, []uint8{0, 0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("short rows: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := NewBitmap(3, 3, []uint8{0b101, 0b010, 0b101}); err != nil {
		t.Fatalf("valid bitmap rejected: %v", err)
	}
}

func TestBitmapAt(t *testing.T) {
	b := mustBitmap(3, 2, 0b101, 0b010)
	wantOn := [][2]int{{0, 0}, {0, 2}, {1, 1}}
	for _, p := range wantOn {
		on, err := b.At(p[0], p[1])
		if err != nil {
			t.Fatalf("At(%d,%d): %v", p[0], p[1], err)
		}
		if !on {
			t.Fatalf("At(%d,%d): expected on", p[0], p[1])
		}
	}
	if on, _ := b.At(0, 1); on {
		t.Fatal("At(0,1): expected off")
	}
	if _, err := b.At(0, 3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := b.At(2, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestBitmapToFrame(t *testing.T) {
	b := mustBitmap(3, 2, 0b111, 0b001)
	f, err := b.ToFrame()
	if err != nil {
		t.Fatalf("ToFrame: %v", err)
	}
	want := FrameOf(0b11100, 0b00100, 0, 0, 0)
	if f != want {
		t.Fatalf("ToFrame mismatch:\n%s\nwant:\n%s", f, want)
	}

	big := mustBitmap(6, 2, 0, 0)
	if _, err := big.ToFrame(); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("oversize bitmap: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBitmapOr(t *testing.T) {
	a := mustBitmap(4, 2, 0b1000, 0b0001)
	b := mustBitmap(4, 2, 0b0001, 0b1000)
	got, err := a.Or(b)
	if err != nil {
		t.Fatalf("Or: %v", err)
	}
	want := mustBitmap(4, 2, 0b1001, 0b1001)
	if got != want {
		t.Fatal("Or mismatch")
	}
	// Inputs stay untouched.
	if a != mustBitmap(4, 2, 0b1000, 0b0001) {
		t.Fatal("Or mutated its receiver")
	}

	c := mustBitmap(3, 2, 0, 0)
	if _, err := a.Or(c); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBitmapShift(t *testing.T) {
	b := mustBitmap(4, 1, 0b0110)
	left := b.ShiftLeft(false)
	if left != mustBitmap(4, 1, 0b1100) {
		t.Fatal("ShiftLeft mismatch")
	}
	right := b.ShiftRight(true)
	if right != mustBitmap(4, 1, 0b1011) {
		t.Fatal("ShiftRight mismatch")
	}
	if b != mustBitmap(4, 1, 0b0110) {
		t.Fatal("shift mutated its receiver")
	}
}
