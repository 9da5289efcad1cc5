package kernel

import (
	"fmt"
	"time"

	"ember/hal"
)

// MaxTimers bounds the deadline-ordered wake list.
const MaxTimers = 16

type timerEntry struct {
	due   uint64
	w     Waker
	inUse bool
}

// timerQueue is a fixed set of (deadline, waker) pairs behind one
// compare-match alarm channel. Entries are scanned, not sorted: at this
// size a scan beats maintaining order, and insert/expiry stay allocation
// free.
type timerQueue struct {
	ex      *Executor
	alarm   hal.Alarm
	entries [MaxTimers]timerEntry
	armed   bool
	armedAt uint64
}

func (t *timerQueue) init(ex *Executor, alarm hal.Alarm) {
	t.ex = ex
	t.alarm = alarm
}

// schedule inserts a wake at the absolute tick. Callers do not hold ex.mu.
func (t *timerQueue) schedule(due uint64, w Waker) error {
	t.ex.mu.Lock()
	defer t.ex.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].inUse {
			continue
		}
		t.entries[i] = timerEntry{due: due, w: w, inUse: true}
		t.rearmLocked()
		return nil
	}
	return fmt.Errorf("kernel: timer queue full: %w", ErrResourceExhausted)
}

// cancel drops the entry registered for the given waker, if present.
func (t *timerQueue) cancel(w Waker) {
	t.ex.mu.Lock()
	defer t.ex.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].inUse && t.entries[i].w == w {
			t.entries[i] = timerEntry{}
		}
	}
	t.rearmLocked()
}

// rearmLocked programs the alarm for the soonest remaining deadline, or
// disables it when the queue is empty.
func (t *timerQueue) rearmLocked() {
	soonest := uint64(0)
	found := false
	for i := range t.entries {
		if !t.entries[i].inUse {
			continue
		}
		if !found || t.entries[i].due < soonest {
			soonest = t.entries[i].due
			found = true
		}
	}
	if !found {
		if t.armed {
			t.armed = false
			t.alarm.Cancel()
		}
		return
	}
	if t.armed && t.armedAt == soonest {
		return
	}
	t.armed = true
	t.armedAt = soonest
	t.alarm.Arm(soonest, t.onAlarm)
}

// onAlarm runs in interrupt context: wake everything due, then reprogram.
func (t *timerQueue) onAlarm() {
	var due [MaxTimers]Waker
	n := 0

	t.ex.mu.Lock()
	now := t.ex.clock.Now()
	t.armed = false
	for i := range t.entries {
		if t.entries[i].inUse && t.entries[i].due <= now {
			due[n] = t.entries[i].w
			n++
			t.entries[i] = timerEntry{}
		}
	}
	t.rearmLocked()
	t.ex.mu.Unlock()

	for i := 0; i < n; i++ {
		due[i].Wake()
	}
}

// After returns a future that resolves no earlier than d from its first
// poll, with error bounded by one alarm tick.
func (e *Executor) After(d time.Duration) *SleepFuture {
	return &SleepFuture{ex: e, dur: hal.Micros(d)}
}

// SleepFuture suspends its task until a deadline on the timer queue.
type SleepFuture struct {
	ex    *Executor
	dur   uint64
	due   uint64
	armed bool
	waker Waker
}

func (s *SleepFuture) Poll(w Waker) (Poll, error) {
	if !s.armed {
		s.due = s.ex.clock.Now() + s.dur
		if s.dur == 0 {
			s.armed = true
			return Ready, nil
		}
		if err := s.ex.timers.schedule(s.due, w); err != nil {
			return Pending, err
		}
		s.armed = true
		s.waker = w
		return Pending, nil
	}
	if s.ex.clock.Now() >= s.due {
		return Ready, nil
	}
	// Spurious wake: the timer entry is still pending.
	return Pending, nil
}

// Cancel removes the pending timer entry; no further wake can occur.
func (s *SleepFuture) Cancel() {
	if s.armed && s.dur != 0 {
		s.ex.timers.cancel(s.waker)
	}
}
