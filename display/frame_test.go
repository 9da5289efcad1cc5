package display

import (
	"errors"
	"testing"
)

func TestFrameSetGet(t *testing.T) {
	var f Frame
	if err := f.Set(2, 3, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	on, err := f.Get(2, 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !on {
		t.Fatal("expected pixel on")
	}
	if err := f.Set(2, 3, false); err != nil {
		t.Fatalf("Set off: %v", err)
	}
	if on, _ = f.Get(2, 3); on {
		t.Fatal("expected pixel off")
	}
}

func TestFrameOutOfRange(t *testing.T) {
	var f Frame
	cases := [][2]int{{-1, 0}, {0, -1}, {Rows, 0}, {0, Cols}}
	for _, c := range cases {
		if err := f.Set(c[0], c[1], true); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Set(%d,%d): expected ErrOutOfRange, got %v", c[0], c[1], err)
		}
		if _, err := f.Get(c[0], c[1]); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Get(%d,%d): expected ErrOutOfRange, got %v", c[0], c[1], err)
		}
	}
	if f != (Frame{}) {
		t.Fatal("rejected writes must not touch the frame")
	}
}

func TestFrameOfPacking(t *testing.T) {
	f := FrameOf(
		0b10001,
		0b01010,
		0b00100,
		0b00000,
		0b11111,
	)
	want := "10001\n01010\n00100\n00000\n11111"
	if got := f.String(); got != want {
		t.Fatalf("packed frame mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestFrameOr(t *testing.T) {
	a := FrameOf(0b10000, 0, 0, 0, 0)
	b := FrameOf(0b00001, 0, 0, 0, 0b11111)
	a.Or(b)
	want := FrameOf(0b10001, 0, 0, 0, 0b11111)
	if a != want {
		t.Fatalf("Or mismatch:\n%s", a)
	}
}

func TestFrameShiftLeft(t *testing.T) {
	f := FrameOf(0b10010, 0b00001, 0, 0, 0)
	f.ShiftLeft(false)
	if want := FrameOf(0b00100, 0b00010, 0, 0, 0); f != want {
		t.Fatalf("ShiftLeft mismatch:\n%s", f)
	}
	f.ShiftLeft(true)
	if on, _ := f.Get(0, Cols-1); !on {
		t.Fatal("expected fill column on after ShiftLeft(true)")
	}
}

func TestFrameShiftRight(t *testing.T) {
	f := FrameOf(0b01001, 0b10000, 0, 0, 0)
	f.ShiftRight(false)
	if want := FrameOf(0b00100, 0b01000, 0, 0, 0); f != want {
		t.Fatalf("ShiftRight mismatch:\n%s", f)
	}
	f.ShiftRight(true)
	if on, _ := f.Get(0, 0); !on {
		t.Fatal("expected fill column on after ShiftRight(true)")
	}
}

func TestFrameShiftDropsEdge(t *testing.T) {
	f := FrameOf(0b10000, 0, 0, 0, 0)
	f.ShiftLeft(false)
	if f != (Frame{}) {
		t.Fatalf("leftmost column must fall off:\n%s", f)
	}
	f = FrameOf(0b00001, 0, 0, 0, 0)
	f.ShiftRight(false)
	if f != (Frame{}) {
		t.Fatalf("rightmost column must fall off:\n%s", f)
	}
}

func TestFrameShiftRoundTrip(t *testing.T) {
	f := FrameOf(0b01010, 0b00110, 0b01001, 0b00000, 0b01111)
	g := f
	g.ShiftLeft(false)
	g.ShiftRight(false)
	// Everything survives except the column that fell off the left edge.
	for r := 0; r < Rows; r++ {
		for c := 1; c < Cols; c++ {
			want, _ := f.Get(r, c)
			got, _ := g.Get(r, c)
			if got != want {
				t.Fatalf("(%d,%d) changed across shift round trip", r, c)
			}
		}
		if on, _ := g.Get(r, 0); on {
			t.Fatalf("row %d: edge column should be cleared", r)
		}
	}
}

func TestFrameClear(t *testing.T) {
	f := FrameOf(0b11111, 0b11111, 0b11111, 0b11111, 0b11111)
	f.Clear()
	if f != (Frame{}) {
		t.Fatal("Clear left pixels on")
	}
}
