package display

import (
	"fmt"
	"time"

	"ember/kernel"
)

// RepeatPolicy selects what Next does past the final frame.
type RepeatPolicy uint8

const (
	// Once saturates at the last frame.
	Once RepeatPolicy = iota
	// Repeat wraps back to the first frame.
	Repeat
)

// MaxAnimationFrames bounds an animation, fixed at build time.
const MaxAnimationFrames = 16

// Animation is an ordered (frame, hold) sequence with a cursor. The cursor
// is always a valid index: Once saturates it at the last frame, Repeat wraps
// it to zero.
type Animation struct {
	frames [MaxAnimationFrames]Frame
	holds  [MaxAnimationFrames]time.Duration
	n      int
	cursor int
	policy RepeatPolicy
}

func NewAnimation(policy RepeatPolicy) *Animation {
	return &Animation{policy: policy}
}

// Push appends one step.
func (a *Animation) Push(f Frame, hold time.Duration) error {
	if a.n >= MaxAnimationFrames {
		return fmt.Errorf("display: animation full: %w", kernel.ErrResourceExhausted)
	}
	a.frames[a.n] = f
	a.holds[a.n] = hold
	a.n++
	return nil
}

func (a *Animation) Len() int             { return a.n }
func (a *Animation) Policy() RepeatPolicy { return a.policy }

// Current returns the frame under the cursor without advancing.
func (a *Animation) Current() Frame {
	if a.n == 0 {
		return Frame{}
	}
	return a.frames[a.cursor]
}

// CurrentHold returns the hold duration under the cursor.
func (a *Animation) CurrentHold() time.Duration {
	if a.n == 0 {
		return 0
	}
	return a.holds[a.cursor]
}

// Next advances the cursor per the repeat policy and returns the new
// current frame. Under Once it is idempotent at the last frame.
func (a *Animation) Next() Frame {
	if a.n == 0 {
		return Frame{}
	}
	switch a.policy {
	case Repeat:
		a.cursor = (a.cursor + 1) % a.n
	default:
		if a.cursor < a.n-1 {
			a.cursor++
		}
	}
	return a.frames[a.cursor]
}

// AtEnd reports whether a Once animation has saturated at its final frame.
// A Repeat animation never ends.
func (a *Animation) AtEnd() bool {
	return a.policy == Once && a.n > 0 && a.cursor == a.n-1
}

// Rewind resets the cursor so the animation can be replayed.
func (a *Animation) Rewind() {
	a.cursor = 0
}
