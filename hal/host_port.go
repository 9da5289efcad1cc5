//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
)

// PinLevel is the electrical state of a simulated pin.
type PinLevel uint8

const (
	PinFloating PinLevel = iota
	PinLow
	PinHigh
)

func (l PinLevel) String() string {
	switch l {
	case PinFloating:
		return "z"
	case PinLow:
		return "0"
	case PinHigh:
		return "1"
	default:
		return "?"
	}
}

// SimPin is a recording tri-state output pin.
type SimPin struct {
	mu    sync.Mutex
	name  string
	level PinLevel
}

func NewSimPin(name string) *SimPin {
	return &SimPin{name: name, level: PinFloating}
}

func (p *SimPin) Name() string { return p.name }

func (p *SimPin) High() error  { p.set(PinHigh); return nil }
func (p *SimPin) Low() error   { p.set(PinLow); return nil }
func (p *SimPin) Float() error { p.set(PinFloating); return nil }

func (p *SimPin) set(l PinLevel) {
	p.mu.Lock()
	p.level = l
	p.mu.Unlock()
}

// Level returns the current electrical state.
func (p *SimPin) Level() PinLevel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// SimButton is a simulated active-low push button with an external pull-up:
// released reads high, pressed reads low.
type SimButton struct {
	mu       sync.Mutex
	name     string
	pressed  bool
	watch    func()
	watchSeq uint32
}

func NewSimButton(name string) *SimButton {
	return &SimButton{name: name}
}

func (b *SimButton) Name() string { return b.name }

func (b *SimButton) Read() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.pressed, nil
}

func (b *SimButton) WatchFall(fn func()) (CancelWatch, error) {
	if fn == nil {
		return nil, fmt.Errorf("hal: pin %s: nil watch callback", b.name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.watch != nil {
		return nil, fmt.Errorf("hal: pin %s: %w", b.name, ErrPinTaken)
	}
	b.watch = fn
	b.watchSeq++
	seq := b.watchSeq
	return func() {
		b.mu.Lock()
		if b.watchSeq == seq {
			b.watch = nil
		}
		b.mu.Unlock()
	}, nil
}

// Press drives the pin low. A registered fall watch is consumed and invoked,
// mirroring an edge interrupt.
func (b *SimButton) Press() {
	b.mu.Lock()
	if b.pressed {
		b.mu.Unlock()
		return
	}
	b.pressed = true
	fn := b.watch
	b.watch = nil
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Release returns the pin to the pulled-up high level.
func (b *SimButton) Release() {
	b.mu.Lock()
	b.pressed = false
	b.mu.Unlock()
}

// SimPanel integrates lit time per LED from the matrix pin levels: an LED at
// (row, col) conducts while its row pin is high and its column pin is low.
// Hooked to SimClock.OnAdvance it reproduces persistence of vision without
// hardware, which is how the charlieplex scan is verified.
type SimPanel struct {
	mu     sync.Mutex
	rows   []*SimPin
	cols   []*SimPin
	lit    [][]uint64
	window uint64
}

func NewSimPanel(rows, cols []*SimPin) *SimPanel {
	lit := make([][]uint64, len(rows))
	for i := range lit {
		lit[i] = make([]uint64, len(cols))
	}
	return &SimPanel{rows: rows, cols: cols, lit: lit}
}

// Observe accumulates the interval (from, to] under the current pin levels.
func (p *SimPanel) Observe(from, to uint64) {
	if to <= from {
		return
	}
	dt := to - from
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window += dt
	for r, rp := range p.rows {
		if rp.Level() != PinHigh {
			continue
		}
		for c, cp := range p.cols {
			if cp.Level() == PinLow {
				p.lit[r][c] += dt
			}
		}
	}
}

// Duty returns per-LED lit fractions over the observation window and resets
// the accumulator.
func (p *SimPanel) Duty() [][]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]float64, len(p.lit))
	for r := range p.lit {
		out[r] = make([]float64, len(p.lit[r]))
		for c := range p.lit[r] {
			if p.window > 0 {
				out[r][c] = float64(p.lit[r][c]) / float64(p.window)
			}
			p.lit[r][c] = 0
		}
	}
	p.window = 0
	return out
}
