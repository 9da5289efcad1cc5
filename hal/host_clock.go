//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// SimClock is a simulated monotonic counter for host builds and tests.
//
// Time only moves when Advance is called; due alarms fire in deadline order
// with Now set to each deadline, so callback code observes the same timing
// it would on hardware.
type SimClock struct {
	mu      sync.Mutex
	now     uint64
	alarms  []*simAlarm
	observe []func(from, to uint64)
}

func NewSimClock() *SimClock {
	return &SimClock{}
}

func (c *SimClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) NewAlarm() Alarm {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := &simAlarm{c: c}
	c.alarms = append(c.alarms, a)
	return a
}

// OnAdvance registers fn to run after every time jump, before the alarm due
// at the new timestamp fires. Pin levels are constant across (from, to], which
// is what makes duty integration exact.
func (c *SimClock) OnAdvance(fn func(from, to uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observe = append(c.observe, fn)
}

// Advance moves simulated time forward by d, firing every alarm that comes
// due along the way.
func (c *SimClock) Advance(d time.Duration) {
	c.AdvanceTicks(Micros(d))
}

// AdvanceTicks is Advance in raw microsecond ticks.
func (c *SimClock) AdvanceTicks(dt uint64) {
	c.mu.Lock()
	target := c.now + dt
	for {
		a := c.nextDueLocked(target)
		if a == nil {
			break
		}
		from := c.now
		c.now = a.at
		a.armed = false
		fn := a.fn
		obs := c.observe
		c.mu.Unlock()

		for _, o := range obs {
			o(from, a.at)
		}
		if fn != nil {
			fn()
		}

		c.mu.Lock()
	}
	from := c.now
	c.now = target
	obs := c.observe
	c.mu.Unlock()

	if from != target {
		for _, o := range obs {
			o(from, target)
		}
	}
}

// nextDueLocked returns the earliest armed alarm with deadline <= target.
func (c *SimClock) nextDueLocked(target uint64) *simAlarm {
	var due *simAlarm
	for _, a := range c.alarms {
		if !a.armed || a.at > target {
			continue
		}
		if due == nil || a.at < due.at {
			due = a
		}
	}
	return due
}

type simAlarm struct {
	c     *SimClock
	at    uint64
	fn    func()
	armed bool
}

func (a *simAlarm) Arm(at uint64, fn func()) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	if at <= a.c.now {
		// Past deadlines still fire, on the next Advance.
		at = a.c.now
	}
	a.at = at
	a.fn = fn
	a.armed = true
}

func (a *simAlarm) Cancel() {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	a.armed = false
	a.fn = nil
}
