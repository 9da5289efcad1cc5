//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// SimBoard is the host-side board: simulated matrix pins, buttons, clock and
// a persistence-of-vision panel wired to the clock.
type SimBoard struct {
	clock *SimClock
	rows  []*SimPin
	cols  []*SimPin
	btnA  *SimButton
	btnB  *SimButton
	panel *SimPanel
	log   Logger
}

// NewSimBoard builds a simulated board with the given matrix geometry.
func NewSimBoard(numRows, numCols int) *SimBoard {
	b := &SimBoard{
		clock: NewSimClock(),
		btnA:  NewSimButton("BTN_A"),
		btnB:  NewSimButton("BTN_B"),
		log:   &hostLogger{w: os.Stdout},
	}
	for i := 0; i < numRows; i++ {
		b.rows = append(b.rows, NewSimPin(fmt.Sprintf("ROW%d", i+1)))
	}
	for i := 0; i < numCols; i++ {
		b.cols = append(b.cols, NewSimPin(fmt.Sprintf("COL%d", i+1)))
	}
	b.panel = NewSimPanel(b.rows, b.cols)
	b.clock.OnAdvance(b.panel.Observe)
	return b
}

func (b *SimBoard) Logger() Logger { return b.log }
func (b *SimBoard) Clock() Clock   { return b.clock }

func (b *SimBoard) MatrixRows() []OutputPin {
	out := make([]OutputPin, len(b.rows))
	for i, p := range b.rows {
		out[i] = p
	}
	return out
}

func (b *SimBoard) MatrixCols() []OutputPin {
	out := make([]OutputPin, len(b.cols))
	for i, p := range b.cols {
		out[i] = p
	}
	return out
}

func (b *SimBoard) ButtonA() InputPin { return b.btnA }
func (b *SimBoard) ButtonB() InputPin { return b.btnB }

// SimClock exposes the simulated timebase for tests and runners.
func (b *SimBoard) SimClock() *SimClock { return b.clock }

// Panel exposes the persistence-of-vision accumulator.
func (b *SimBoard) Panel() *SimPanel { return b.panel }

// SimButtonA and SimButtonB expose the raw buttons for scripted input.
func (b *SimBoard) SimButtonA() *SimButton { return b.btnA }
func (b *SimBoard) SimButtonB() *SimButton { return b.btnB }

// SetLogger replaces the diagnostic sink. A nil sink silences diagnostics.
func (b *SimBoard) SetLogger(l Logger) { b.log = l }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
