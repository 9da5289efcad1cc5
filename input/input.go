// Package input turns GPIO edge interrupts into pollable futures.
//
// Each future arms a single-shot falling-edge watch on first poll and
// completes when the edge interrupt fires. The watch is consumed by the
// edge; waiting again requires a fresh future.
package input

import (
	"fmt"
	"sync"

	"ember/hal"
	"ember/kernel"
)

type edgeState uint8

const (
	edgeIdle edgeState = iota
	edgeArmed
	edgeFired
	edgeDone
)

// EdgeFuture completes on the next falling edge of its pin.
type EdgeFuture struct {
	pin hal.InputPin

	mu     sync.Mutex
	st     edgeState
	w      kernel.Waker
	cancel hal.CancelWatch
}

// WaitFall returns a future completing on the pin's next falling edge.
// For an active-low button that is the press edge.
func WaitFall(pin hal.InputPin) *EdgeFuture {
	return &EdgeFuture{pin: pin}
}

func (f *EdgeFuture) Poll(w kernel.Waker) (kernel.Poll, error) {
	f.mu.Lock()
	switch f.st {
	case edgeIdle:
		f.w = w
		cancel, err := f.pin.WatchFall(f.fired)
		if err != nil {
			f.mu.Unlock()
			return kernel.Pending, fmt.Errorf("input: watch %s: %w", f.pin.Name(), err)
		}
		f.cancel = cancel
		f.st = edgeArmed
		f.mu.Unlock()
		return kernel.Pending, nil
	case edgeArmed:
		// Spurious wake; keep the latest waker for the interrupt.
		f.w = w
		f.mu.Unlock()
		return kernel.Pending, nil
	case edgeFired, edgeDone:
		f.st = edgeDone
		f.mu.Unlock()
		return kernel.Ready, nil
	}
	f.mu.Unlock()
	return kernel.Pending, nil
}

// fired runs in interrupt context.
func (f *EdgeFuture) fired() {
	f.mu.Lock()
	if f.st != edgeArmed {
		f.mu.Unlock()
		return
	}
	f.st = edgeFired
	f.cancel = nil
	w := f.w
	f.mu.Unlock()
	w.Wake()
}

// Cancel disarms the watch. Safe to call in any state; losing a select
// race against a future that already fired is a no-op.
func (f *EdgeFuture) Cancel() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	if f.st == edgeArmed {
		f.st = edgeDone
	}
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Pressed reads the instantaneous level of an active-low input: true when
// the line is held low.
func Pressed(pin hal.InputPin) (bool, error) {
	high, err := pin.Read()
	if err != nil {
		return false, fmt.Errorf("input: read %s: %w", pin.Name(), err)
	}
	return !high, nil
}
