//go:build tinygo

package hal

import (
	"fmt"
	"machine"
	"sync"
)

// NewBoard wires the on-board LED matrix pins, buttons, serial logger and
// monotonic clock of the micro:bit v2 target.
func NewBoard() Board {
	b := &microbitBoard{
		clock: NewWallClock(),
		log:   &serialLogger{},
	}
	rowPins := []machine.Pin{machine.LED_ROW_1, machine.LED_ROW_2, machine.LED_ROW_3, machine.LED_ROW_4, machine.LED_ROW_5}
	colPins := []machine.Pin{machine.LED_COL_1, machine.LED_COL_2, machine.LED_COL_3, machine.LED_COL_4, machine.LED_COL_5}
	for i, p := range rowPins {
		b.rows = append(b.rows, &machinePin{pin: p, name: fmt.Sprintf("ROW%d", i+1)})
	}
	for i, p := range colPins {
		b.cols = append(b.cols, &machinePin{pin: p, name: fmt.Sprintf("COL%d", i+1)})
	}
	b.btnA = newMachineButton(machine.BUTTONA, "BTN_A")
	b.btnB = newMachineButton(machine.BUTTONB, "BTN_B")
	return b
}

type microbitBoard struct {
	clock *WallClock
	log   *serialLogger
	rows  []OutputPin
	cols  []OutputPin
	btnA  *machineButton
	btnB  *machineButton
}

func (b *microbitBoard) Logger() Logger          { return b.log }
func (b *microbitBoard) Clock() Clock            { return b.clock }
func (b *microbitBoard) MatrixRows() []OutputPin { return b.rows }
func (b *microbitBoard) MatrixCols() []OutputPin { return b.cols }
func (b *microbitBoard) ButtonA() InputPin       { return b.btnA }
func (b *microbitBoard) ButtonB() InputPin       { return b.btnB }

// machinePin is a tri-state output: driving configures the pin as output,
// floating reconfigures it as a plain input so the line goes high-Z.
type machinePin struct {
	pin    machine.Pin
	name   string
	driven bool
}

func (p *machinePin) Name() string { return p.name }

func (p *machinePin) drive() {
	if !p.driven {
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.driven = true
	}
}

func (p *machinePin) High() error {
	p.drive()
	p.pin.High()
	return nil
}

func (p *machinePin) Low() error {
	p.drive()
	p.pin.Low()
	return nil
}

func (p *machinePin) Float() error {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	p.driven = false
	return nil
}

// machineButton exposes a pulled-up input with a single-shot falling-edge
// watch backed by the pin interrupt.
type machineButton struct {
	pin  machine.Pin
	name string

	mu    sync.Mutex
	fn    func()
	seq   uint32
	armed bool
}

func newMachineButton(pin machine.Pin, name string) *machineButton {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &machineButton{pin: pin, name: name}
}

func (b *machineButton) Name() string { return b.name }

func (b *machineButton) Read() (bool, error) {
	return b.pin.Get(), nil
}

func (b *machineButton) WatchFall(fn func()) (CancelWatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.armed {
		return nil, fmt.Errorf("hal: %s: %w", b.name, ErrPinTaken)
	}
	b.fn = fn
	b.seq++
	seq := b.seq
	b.armed = true
	if err := b.pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		b.fire()
	}); err != nil {
		b.fn = nil
		b.armed = false
		return nil, fmt.Errorf("hal: %s: %w", b.name, err)
	}
	cancel := func() {
		b.mu.Lock()
		if b.armed && b.seq == seq {
			b.armed = false
			b.fn = nil
			b.pin.SetInterrupt(0, nil)
		}
		b.mu.Unlock()
	}
	return cancel, nil
}

// fire runs in interrupt context. The watch is single-shot: the edge
// consumes it.
func (b *machineButton) fire() {
	b.mu.Lock()
	fn := b.fn
	if !b.armed {
		b.mu.Unlock()
		return
	}
	b.armed = false
	b.fn = nil
	b.pin.SetInterrupt(0, nil)
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type serialLogger struct{}

func (serialLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		machine.Serial.WriteByte(s[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

func (serialLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		machine.Serial.WriteByte(b[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}
