package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited diagnostic lines.
//
// The sink is fire-and-forget: implementations must not block, and a nil
// Logger anywhere in the system is always legal.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotSupported = errors.New("not supported")
	ErrPinTaken     = errors.New("pin already taken")
)

// OutputPin is a tri-state digital output.
//
// Float puts the pin in high impedance; charlieplexed matrices rely on it to
// keep inactive rows and columns from ghosting.
type OutputPin interface {
	Name() string
	High() error
	Low() error
	Float() error
}

// CancelWatch removes a pending edge registration. Calling it after the
// watch has fired is a no-op.
type CancelWatch func()

// InputPin is a digital input with single-shot edge-event capability.
type InputPin interface {
	Name() string
	Read() (level bool, err error)

	// WatchFall registers fn to run once on the next high-to-low transition.
	// The registration is consumed before fn runs; fn executes in interrupt
	// context and must not block.
	WatchFall(fn func()) (CancelWatch, error)
}

// Alarm is one compare-match channel of the monotonic counter.
//
// Arm replaces any previously armed deadline. The callback runs in interrupt
// context no earlier than the armed tick.
type Alarm interface {
	Arm(at uint64, fn func())
	Cancel()
}

// Clock is the monotonic timebase. Ticks are microseconds since boot.
type Clock interface {
	Now() uint64

	// NewAlarm allocates a compare-match channel, or nil when the hardware
	// has none left.
	NewAlarm() Alarm
}

// Micros converts a duration to clock ticks, clamping negatives to zero.
func Micros(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Microsecond)
}

// Board is the only contact point between the runtime core and the outside
// world: the matrix pins, the two buttons, the timebase and the log sink.
type Board interface {
	Logger() Logger
	Clock() Clock
	MatrixRows() []OutputPin
	MatrixCols() []OutputPin
	ButtonA() InputPin
	ButtonB() InputPin
}
