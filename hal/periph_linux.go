//go:build periph

package hal

import (
	"fmt"
	"os"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPinout names the header pins wired to the matrix and buttons on a
// Linux single-board computer.
type PeriphPinout struct {
	Rows    []string `yaml:"rows"`
	Cols    []string `yaml:"cols"`
	ButtonA string   `yaml:"button_a"`
	ButtonB string   `yaml:"button_b"`
}

// NewPeriphBoard resolves the pinout through the periph.io host drivers.
// Output pins float by reconfiguring as inputs, which most SBC GPIO
// controllers implement as true high-Z.
func NewPeriphBoard(pinout PeriphPinout) (Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hal: periph init: %w", err)
	}
	b := &periphBoard{
		clock: NewWallClock(),
		log:   &stderrLogger{},
	}
	for _, name := range pinout.Rows {
		p, err := lookupPin(name)
		if err != nil {
			return nil, err
		}
		b.rows = append(b.rows, &periphPin{pin: p})
	}
	for _, name := range pinout.Cols {
		p, err := lookupPin(name)
		if err != nil {
			return nil, err
		}
		b.cols = append(b.cols, &periphPin{pin: p})
	}
	var err error
	if b.btnA, err = newPeriphButton(pinout.ButtonA); err != nil {
		return nil, err
	}
	if b.btnB, err = newPeriphButton(pinout.ButtonB); err != nil {
		return nil, err
	}
	return b, nil
}

func lookupPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("hal: no such pin %q: %w", name, ErrNotSupported)
	}
	return p, nil
}

type periphBoard struct {
	clock *WallClock
	log   *stderrLogger
	rows  []OutputPin
	cols  []OutputPin
	btnA  *periphButton
	btnB  *periphButton
}

func (b *periphBoard) Logger() Logger          { return b.log }
func (b *periphBoard) Clock() Clock            { return b.clock }
func (b *periphBoard) MatrixRows() []OutputPin { return b.rows }
func (b *periphBoard) MatrixCols() []OutputPin { return b.cols }
func (b *periphBoard) ButtonA() InputPin       { return b.btnA }
func (b *periphBoard) ButtonB() InputPin       { return b.btnB }

type periphPin struct {
	pin gpio.PinIO
}

func (p *periphPin) Name() string { return p.pin.Name() }

func (p *periphPin) High() error { return p.pin.Out(gpio.High) }
func (p *periphPin) Low() error  { return p.pin.Out(gpio.Low) }

func (p *periphPin) Float() error {
	return p.pin.In(gpio.PullNoChange, gpio.NoEdge)
}

// periphButton serves single-shot falling-edge watches from a WaitForEdge
// goroutine.
type periphButton struct {
	pin  gpio.PinIO
	mu   sync.Mutex
	fn   func()
	seq  uint32
	busy bool
}

func newPeriphButton(name string) (*periphButton, error) {
	p, err := lookupPin(name)
	if err != nil {
		return nil, err
	}
	if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("hal: %s: %w", name, err)
	}
	b := &periphButton{pin: p}
	go b.edgeLoop()
	return b, nil
}

func (b *periphButton) edgeLoop() {
	for {
		if !b.pin.WaitForEdge(-1) {
			continue
		}
		b.mu.Lock()
		fn := b.fn
		b.fn = nil
		b.busy = false
		b.mu.Unlock()
		if fn != nil {
			fn()
		}
	}
}

func (b *periphButton) Name() string { return b.pin.Name() }

func (b *periphButton) Read() (bool, error) {
	return bool(b.pin.Read()), nil
}

func (b *periphButton) WatchFall(fn func()) (CancelWatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return nil, fmt.Errorf("hal: %s: %w", b.pin.Name(), ErrPinTaken)
	}
	b.fn = fn
	b.busy = true
	b.seq++
	seq := b.seq
	cancel := func() {
		b.mu.Lock()
		if b.busy && b.seq == seq {
			b.fn = nil
			b.busy = false
		}
		b.mu.Unlock()
	}
	return cancel, nil
}

type stderrLogger struct {
	mu sync.Mutex
}

func (l *stderrLogger) WriteLineString(s string) {
	l.mu.Lock()
	fmt.Fprintln(os.Stderr, s)
	l.mu.Unlock()
}

func (l *stderrLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}
