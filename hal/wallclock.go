package hal

import (
	"sync"
	"time"
)

// WallClock is a microsecond monotonic clock over the runtime timer, with
// alarms backed by time.AfterFunc. Hardware backends without a dedicated
// compare-match peripheral use it.
type WallClock struct {
	start time.Time
}

// NewWallClock starts counting from zero at the call.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Now() uint64 {
	return uint64(time.Since(c.start) / time.Microsecond)
}

func (c *WallClock) NewAlarm() Alarm {
	return &wallAlarm{c: c}
}

type wallAlarm struct {
	c  *WallClock
	mu sync.Mutex
	t  *time.Timer
}

func (a *wallAlarm) Arm(at uint64, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var delay time.Duration
	if now := a.c.Now(); at > now {
		delay = time.Duration(at-now) * time.Microsecond
	}
	if a.t != nil {
		a.t.Stop()
	}
	a.t = time.AfterFunc(delay, fn)
}

func (a *wallAlarm) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
		a.t = nil
	}
}
