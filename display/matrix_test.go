package display

import (
	"errors"
	"testing"
	"time"

	"ember/hal"
	"ember/kernel"
)

type matrixRig struct {
	clock *hal.SimClock
	ex    *kernel.Executor
	m     *LedMatrix
	rows  []*hal.SimPin
	cols  []*hal.SimPin
	panel *hal.SimPanel
}

func newMatrixRig(t *testing.T) *matrixRig {
	t.Helper()
	clock := hal.NewSimClock()
	ex, err := kernel.New(clock)
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}

	rig := &matrixRig{clock: clock, ex: ex}
	var rowPins, colPins []hal.OutputPin
	for i := 0; i < Rows; i++ {
		p := hal.NewSimPin("ROW")
		rig.rows = append(rig.rows, p)
		rowPins = append(rowPins, p)
	}
	for i := 0; i < Cols; i++ {
		p := hal.NewSimPin("COL")
		rig.cols = append(rig.cols, p)
		colPins = append(colPins, p)
	}
	rig.panel = hal.NewSimPanel(rig.rows, rig.cols)
	clock.OnAdvance(rig.panel.Observe)

	rig.m, err = New(ex, rowPins, colPins)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { rig.m.Close() })
	return rig
}

// run advances simulated time in millisecond quanta, draining the executor
// after each, so tasks resume promptly the way they would on hardware.
func (r *matrixRig) run(t *testing.T, d time.Duration) {
	t.Helper()
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Millisecond {
		r.clock.Advance(time.Millisecond)
		if err := r.ex.Drain(); err != nil {
			t.Fatalf("Drain: %v", err)
		}
	}
}

func fullFrame() Frame {
	return FrameOf(0b11111, 0b11111, 0b11111, 0b11111, 0b11111)
}

func TestMatrixPinCountRejected(t *testing.T) {
	clock := hal.NewSimClock()
	ex, err := kernel.New(clock)
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	short := []hal.OutputPin{hal.NewSimPin("R1")}
	if _, err := New(ex, short, short); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMatrixSingleOwner(t *testing.T) {
	rig := newMatrixRig(t)

	var rows, cols []hal.OutputPin
	for i := 0; i < Rows; i++ {
		rows = append(rows, hal.NewSimPin("R"))
	}
	for i := 0; i < Cols; i++ {
		cols = append(cols, hal.NewSimPin("C"))
	}
	if _, err := New(rig.ex, rows, cols); !errors.Is(err, kernel.ErrHardwareFault) {
		t.Fatalf("second driver: expected ErrHardwareFault, got %v", err)
	}

	// Close releases ownership for the next rig.
	if err := rig.m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	m2, err := New(rig.ex, rows, cols)
	if err != nil {
		t.Fatalf("reopen after Close: %v", err)
	}
	m2.Close()
}

func TestScanDrivesOneRowAtATime(t *testing.T) {
	rig := newMatrixRig(t)
	rig.m.Apply(fullFrame())
	rig.m.Start()

	// Sample well inside each slice across several full scans.
	for i := 0; i < 50; i++ {
		rig.clock.AdvanceTicks(100)
		high := 0
		for _, rp := range rig.rows {
			if rp.Level() == hal.PinHigh {
				high++
			}
		}
		if high > 1 {
			t.Fatalf("sample %d: %d rows driven high at once", i, high)
		}
	}
}

func TestScanPinLevels(t *testing.T) {
	rig := newMatrixRig(t)

	var f Frame
	if err := f.Set(0, 0, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	rig.m.Apply(f)
	rig.m.Start()

	// 600us in: the scan is in the lit phase of row 0.
	rig.clock.Advance(600 * time.Microsecond)

	if lvl := rig.rows[0].Level(); lvl != hal.PinHigh {
		t.Fatalf("active row: got %s, want 1", lvl)
	}
	if lvl := rig.cols[0].Level(); lvl != hal.PinLow {
		t.Fatalf("lit column: got %s, want 0", lvl)
	}
	for i := 1; i < Rows; i++ {
		if lvl := rig.rows[i].Level(); lvl != hal.PinFloating {
			t.Fatalf("idle row %d: got %s, want z", i, lvl)
		}
	}
	for i := 1; i < Cols; i++ {
		if lvl := rig.cols[i].Level(); lvl != hal.PinFloating {
			t.Fatalf("dark column %d: got %s, want z", i, lvl)
		}
	}
}

func TestScanDutyFollowsBrightness(t *testing.T) {
	rig := newMatrixRig(t)
	rig.m.Apply(fullFrame())
	rig.m.Start()

	// Align on a slice boundary, then measure whole scan periods.
	rig.clock.Advance(RefreshSlice)
	rig.panel.Duty()

	measure := func() float64 {
		rig.clock.Advance(10 * Rows * RefreshSlice)
		duty := rig.panel.Duty()
		return duty[2][2]
	}

	rig.m.SetBrightness(BrightnessMax)
	if got, want := measure(), 1.0/Rows; !closeTo(got, want) {
		t.Fatalf("level 10: duty %f, want %f", got, want)
	}

	rig.m.SetBrightness(BrightnessDefault)
	if got, want := measure(), 0.5/Rows; !closeTo(got, want) {
		t.Fatalf("level 5: duty %f, want %f", got, want)
	}

	rig.m.SetBrightness(BrightnessMin)
	if got := measure(); got != 0 {
		t.Fatalf("level 0: duty %f, want 0", got)
	}
}

func closeTo(got, want float64) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d < 0.02
}

func TestDisplayHoldsThenClears(t *testing.T) {
	rig := newMatrixRig(t)

	f := FrameOf(0b10001, 0, 0b00100, 0, 0b10001)
	fut := rig.m.Display(f, 100*time.Millisecond)
	if _, err := rig.ex.Spawn(fut); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if rig.m.Frame() != f {
		t.Fatalf("frame not applied:\n%s", rig.m.Frame())
	}

	rig.run(t, 99*time.Millisecond)
	if rig.m.Frame() != f {
		t.Fatal("frame dropped before the hold elapsed")
	}

	rig.run(t, 1*time.Millisecond)
	if rig.m.Frame() != (Frame{}) {
		t.Fatalf("display should blank after the hold:\n%s", rig.m.Frame())
	}
	if rig.ex.Live() != 0 {
		t.Fatalf("display task still live: %d", rig.ex.Live())
	}
}

func TestDisplayAccessIsFIFO(t *testing.T) {
	rig := newMatrixRig(t)

	fa := FrameOf(0b10000, 0, 0, 0, 0)
	fb := FrameOf(0b01000, 0, 0, 0, 0)
	fc := FrameOf(0b00100, 0, 0, 0, 0)
	for _, f := range []Frame{fa, fb, fc} {
		if _, err := rig.ex.Spawn(rig.m.Display(f, 10*time.Millisecond)); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
	}
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if rig.m.Frame() != fa {
		t.Fatalf("first requester should hold the display:\n%s", rig.m.Frame())
	}

	rig.run(t, 10*time.Millisecond)
	if rig.m.Frame() != fb {
		t.Fatalf("second requester should follow in order:\n%s", rig.m.Frame())
	}

	rig.run(t, 10*time.Millisecond)
	if rig.m.Frame() != fc {
		t.Fatalf("third requester should follow:\n%s", rig.m.Frame())
	}

	rig.run(t, 10*time.Millisecond)
	if rig.ex.Live() != 0 {
		t.Fatalf("%d tasks still live", rig.ex.Live())
	}
}

func TestDisplayCancelReleasesAccess(t *testing.T) {
	rig := newMatrixRig(t)

	held := rig.m.Display(fullFrame(), time.Hour)
	next := rig.m.Display(FrameOf(0b00100, 0, 0, 0, 0), 10*time.Millisecond)
	if _, err := rig.ex.Spawn(held); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if _, err := rig.ex.Spawn(next); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	held.Cancel()
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if rig.m.Frame() != FrameOf(0b00100, 0, 0, 0, 0) {
		t.Fatalf("queued requester should take over after cancel:\n%s", rig.m.Frame())
	}
}

func TestScrollSlidesColumns(t *testing.T) {
	rig := newMatrixRig(t)
	font := NewFont(FallbackError)

	fut, err := rig.m.Scroll("AB", font, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if _, err := rig.ex.Spawn(fut); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	glyphA, _ := font.Glyph('A')
	glyphB, _ := font.Glyph('B')
	if rig.m.Frame() != glyphA {
		t.Fatalf("step 0 should show the first glyph:\n%s", rig.m.Frame())
	}

	rig.run(t, 10*time.Millisecond)
	shifted := glyphA
	shifted.ShiftLeft(false)
	if rig.m.Frame() != shifted {
		t.Fatalf("step 1 should slide one column:\n%s\nwant:\n%s", rig.m.Frame(), shifted)
	}

	// Step Cols+1: the gap has passed and the second glyph is centered.
	rig.run(t, 5*10*time.Millisecond)
	if rig.m.Frame() != glyphB {
		t.Fatalf("step %d should show the second glyph:\n%s", Cols+1, rig.m.Frame())
	}

	// Run the strip off the edge; the scroll completes blank.
	rig.run(t, time.Second)
	if rig.m.Frame() != (Frame{}) {
		t.Fatalf("scroll should end blank:\n%s", rig.m.Frame())
	}
	if rig.ex.Live() != 0 {
		t.Fatalf("scroll task still live: %d", rig.ex.Live())
	}
}

func TestScrollRejectsUnknownRune(t *testing.T) {
	rig := newMatrixRig(t)
	if _, err := rig.m.Scroll("héllo", NewFont(FallbackError), time.Millisecond); !errors.Is(err, ErrUnsupportedGlyph) {
		t.Fatalf("expected ErrUnsupportedGlyph, got %v", err)
	}
}

func TestAnimateOncePlaysThrough(t *testing.T) {
	rig := newMatrixRig(t)

	f0 := FrameOf(0b10000, 0, 0, 0, 0)
	f1 := FrameOf(0b00001, 0, 0, 0, 0)
	anim := NewAnimation(Once)
	if err := anim.Push(f0, 10*time.Millisecond); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := anim.Push(f1, 20*time.Millisecond); err != nil {
		t.Fatalf("Push: %v", err)
	}

	fut, err := rig.m.Animate(anim)
	if err != nil {
		t.Fatalf("Animate: %v", err)
	}
	if _, err := rig.ex.Spawn(fut); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if rig.m.Frame() != f0 {
		t.Fatalf("first frame not shown:\n%s", rig.m.Frame())
	}

	rig.run(t, 10*time.Millisecond)
	if rig.m.Frame() != f1 {
		t.Fatalf("second frame not shown:\n%s", rig.m.Frame())
	}

	rig.run(t, 20*time.Millisecond)
	if rig.m.Frame() != (Frame{}) {
		t.Fatalf("animation should end blank:\n%s", rig.m.Frame())
	}
	if rig.ex.Live() != 0 {
		t.Fatalf("animate task still live: %d", rig.ex.Live())
	}
}

func TestAnimateRepeatUntilCancel(t *testing.T) {
	rig := newMatrixRig(t)

	f0 := FrameOf(0b10000, 0, 0, 0, 0)
	f1 := FrameOf(0b00001, 0, 0, 0, 0)
	anim := NewAnimation(Repeat)
	if err := anim.Push(f0, 10*time.Millisecond); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := anim.Push(f1, 10*time.Millisecond); err != nil {
		t.Fatalf("Push: %v", err)
	}

	fut, err := rig.m.Animate(anim)
	if err != nil {
		t.Fatalf("Animate: %v", err)
	}
	if _, err := rig.ex.Spawn(fut); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := rig.ex.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	// Two full cycles keep looping.
	want := []Frame{f1, f0, f1, f0}
	for i, w := range want {
		rig.run(t, 10*time.Millisecond)
		if rig.m.Frame() != w {
			t.Fatalf("cycle step %d:\n%s\nwant:\n%s", i, rig.m.Frame(), w)
		}
	}

	fut.Cancel()
	if rig.m.Frame() != (Frame{}) {
		t.Fatalf("cancel should blank the display:\n%s", rig.m.Frame())
	}
	rig.run(t, 50*time.Millisecond)
	if rig.m.Frame() != (Frame{}) {
		t.Fatal("cancelled animation came back")
	}
}

func TestEmptyAnimationRejected(t *testing.T) {
	rig := newMatrixRig(t)
	if _, err := rig.m.Animate(NewAnimation(Once)); err == nil {
		t.Fatal("expected error for empty animation")
	}
}
