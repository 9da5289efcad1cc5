package display

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ember/hal"
	"ember/kernel"
)

// RefreshSlice is the row slice period: 500us per row, 2.5ms for a whole
// 5-row frame (400 Hz), far above the persistence-of-vision threshold.
const RefreshSlice = 500 * time.Microsecond

const sliceTicks = uint64(RefreshSlice / time.Microsecond)

// maxWaiters bounds the exclusive-access queue. Every task could be waiting
// plus one ghost entry per slot, mirroring the kernel run queue sizing.
const maxWaiters = kernel.MaxTasks * 2

type scanPhase uint8

const (
	phaseLit scanPhase = iota
	phaseDark
)

// matrixTaken enforces the one-time take-ownership construction: the pins
// drive real hardware, and two drivers aliasing them would fight over
// levels.
var matrixTaken atomic.Bool

// LedMatrix drives a charlieplexed Rows x Cols LED grid.
//
// The scan state machine (row index, slice phase) runs from alarm interrupt
// context and is therefore immune to scheduler starvation. Exactly one row
// pin is high at any instant; all idle pins float to preclude ghosting.
// Brightness is duty-cycle modulation of the lit portion of each row slice.
//
// Display, Scroll and Animate require exclusive access; concurrent
// requests queue in strict FIFO order behind the current holder.
type LedMatrix struct {
	ex    *kernel.Executor
	clock hal.Clock
	alarm hal.Alarm
	log   hal.Logger

	mu         sync.Mutex
	rows       [Rows]hal.OutputPin
	cols       [Cols]hal.OutputPin
	frame      Frame
	brightness Brightness
	rowIdx     int
	phase      scanPhase
	sliceStart uint64
	running    bool
	fault      error

	held    bool
	waiters [maxWaiters]kernel.Waker
	wHead   uint8
	wTail   uint8
}

// New takes ownership of the matrix pins. It fails loudly when a driver
// already exists: aliasing mutable hardware state is never silent.
func New(ex *kernel.Executor, rows, cols []hal.OutputPin) (*LedMatrix, error) {
	if len(rows) != Rows || len(cols) != Cols {
		return nil, fmt.Errorf("display: %dx%d pins for %dx%d matrix: %w",
			len(rows), len(cols), Rows, Cols, ErrDimensionMismatch)
	}
	if matrixTaken.Swap(true) {
		return nil, fmt.Errorf("display: matrix pins already owned: %w", kernel.ErrHardwareFault)
	}
	alarm := ex.Clock().NewAlarm()
	if alarm == nil {
		matrixTaken.Store(false)
		return nil, fmt.Errorf("display: no alarm channel for refresh: %w", kernel.ErrHardwareFault)
	}
	m := &LedMatrix{
		ex:         ex,
		clock:      ex.Clock(),
		alarm:      alarm,
		brightness: BrightnessDefault,
	}
	copy(m.rows[:], rows)
	copy(m.cols[:], cols)
	m.mu.Lock()
	m.floatAllLocked()
	m.mu.Unlock()
	return m, nil
}

// SetLogger sets the diagnostic sink. Nil silences diagnostics.
func (m *LedMatrix) SetLogger(l hal.Logger) { m.log = l }

// Executor returns the executor whose timers pace the matrix operations.
func (m *LedMatrix) Executor() *kernel.Executor { return m.ex }

// Start begins the refresh scan. Idempotent.
func (m *LedMatrix) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.rowIdx = 0
	m.phase = phaseLit
	m.alarm.Arm(m.clock.Now()+sliceTicks, m.step)
}

// Close stops the scan, floats the pins and releases pin ownership so a
// fresh driver may be constructed (test harnesses rebuild the board per
// case).
func (m *LedMatrix) Close() error {
	m.alarm.Cancel()
	m.mu.Lock()
	m.running = false
	m.floatAllLocked()
	m.mu.Unlock()
	matrixTaken.Store(false)
	return nil
}

// Apply replaces the displayed frame immediately. The scan picks it up on
// the next row slice.
func (m *LedMatrix) Apply(f Frame) {
	m.mu.Lock()
	m.frame = f
	m.mu.Unlock()
}

// Frame returns the currently displayed frame.
func (m *LedMatrix) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// Clear blanks the display immediately. Idempotent, never suspends.
func (m *LedMatrix) Clear() {
	m.Apply(Frame{})
}

// SetBrightness sets the duty-cycle level for subsequent row slices.
func (m *LedMatrix) SetBrightness(b Brightness) {
	m.mu.Lock()
	m.brightness = b
	m.mu.Unlock()
}

// Brightness returns the current duty-cycle level.
func (m *LedMatrix) Brightness() Brightness {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness
}

// step is the scan state machine, driven from alarm interrupt context. Each
// row slice splits into a lit phase sized by the brightness level and a
// dark remainder.
func (m *LedMatrix) step() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.fault != nil {
		return
	}

	now := m.clock.Now()
	var next uint64
	switch m.phase {
	case phaseLit:
		m.sliceStart = now
		lit := m.litTicksLocked()
		switch {
		case lit == 0:
			m.floatAllLocked()
			next = now + sliceTicks
			m.advanceRowLocked()
		case lit >= sliceTicks:
			m.renderLocked()
			next = now + sliceTicks
			m.advanceRowLocked()
		default:
			m.renderLocked()
			next = now + lit
			m.phase = phaseDark
		}
	case phaseDark:
		m.floatAllLocked()
		next = m.sliceStart + sliceTicks
		if next <= now {
			next = now
		}
		m.phase = phaseLit
		m.advanceRowLocked()
	}

	if m.fault != nil {
		if m.log != nil {
			m.log.WriteLineString("display: scan halt: " + m.fault.Error())
		}
		m.floatAllLocked()
		return
	}
	m.alarm.Arm(next, m.step)
}

func (m *LedMatrix) advanceRowLocked() {
	m.rowIdx = (m.rowIdx + 1) % Rows
}

func (m *LedMatrix) litTicksLocked() uint64 {
	return sliceTicks * uint64(m.brightness.Level()) / uint64(BrightnessMax.Level())
}

// renderLocked drives one row: the active row high, lit columns low, every
// other pin floating. It is the non-suspendable render primitive and must
// finish well inside one slice period.
func (m *LedMatrix) renderLocked() {
	for i, rp := range m.rows {
		if i == m.rowIdx {
			continue
		}
		m.pinOp(rp.Float)
	}
	for c, cp := range m.cols {
		if m.frame.rows[m.rowIdx]&(1<<(7-c)) != 0 {
			m.pinOp(cp.Low)
		} else {
			m.pinOp(cp.Float)
		}
	}
	m.pinOp(m.rows[m.rowIdx].High)
}

func (m *LedMatrix) floatAllLocked() {
	for _, rp := range m.rows {
		m.pinOp(rp.Float)
	}
	for _, cp := range m.cols {
		m.pinOp(cp.Float)
	}
}

// pinOp records the first pin failure as a hardware fault; the scan stops
// and the next matrix operation surfaces it as a fatal halt.
func (m *LedMatrix) pinOp(op func() error) {
	if m.fault != nil {
		return
	}
	if err := op(); err != nil {
		m.fault = fmt.Errorf("display: pin: %v: %w", err, kernel.ErrHardwareFault)
	}
}

// Fault returns the recorded hardware fault, if any.
func (m *LedMatrix) Fault() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault
}

// tryAcquire grants exclusive access or queues the waker FIFO. Duplicate
// wakers from spurious re-polls are collapsed.
func (m *LedMatrix) tryAcquire(w kernel.Waker) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fault != nil {
		return false, m.fault
	}
	if !m.held {
		m.held = true
		return true, nil
	}
	for i := m.wTail; i != m.wHead; i++ {
		if m.waiters[i%maxWaiters] == w {
			return false, nil
		}
	}
	if m.wHead-m.wTail >= maxWaiters {
		return false, fmt.Errorf("display: access queue full: %w", kernel.ErrResourceExhausted)
	}
	m.waiters[m.wHead%maxWaiters] = w
	m.wHead++
	return false, nil
}

// release hands exclusive access to the next queued waiter, if any.
func (m *LedMatrix) release() {
	m.mu.Lock()
	m.held = false
	var next kernel.Waker
	wake := false
	if m.wTail != m.wHead {
		next = m.waiters[m.wTail%maxWaiters]
		m.wTail++
		wake = true
	}
	m.mu.Unlock()
	if wake {
		next.Wake()
	}
}

// dropWaiter removes a queued waker after a cancelled acquire.
func (m *LedMatrix) dropWaiter(w kernel.Waker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := m.wTail; i != m.wHead; i++ {
		if m.waiters[i%maxWaiters] != w {
			continue
		}
		for j := i; j+1 != m.wHead; j++ {
			m.waiters[j%maxWaiters] = m.waiters[(j+1)%maxWaiters]
		}
		m.wHead--
		return
	}
}
