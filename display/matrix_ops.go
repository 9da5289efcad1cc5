package display

import (
	"fmt"
	"time"

	"ember/kernel"
)

type opState uint8

const (
	opAcquire opState = iota
	opHold
	opDone
)

// DisplayFuture shows one frame for a fixed duration, then blanks the
// display and releases exclusive access.
type DisplayFuture struct {
	m     *LedMatrix
	frame Frame
	dur   time.Duration
	st    opState
	w     kernel.Waker
	sleep *kernel.SleepFuture
}

// Display shows f for d. The returned future completes after the hold
// elapses; the display reads blank afterwards.
func (m *LedMatrix) Display(f Frame, d time.Duration) *DisplayFuture {
	return &DisplayFuture{m: m, frame: f, dur: d}
}

func (f *DisplayFuture) Poll(w kernel.Waker) (kernel.Poll, error) {
	for {
		switch f.st {
		case opAcquire:
			f.w = w
			ok, err := f.m.tryAcquire(w)
			if err != nil {
				return kernel.Pending, err
			}
			if !ok {
				return kernel.Pending, nil
			}
			f.m.Apply(f.frame)
			f.sleep = f.m.ex.After(f.dur)
			f.st = opHold
		case opHold:
			res, err := f.sleep.Poll(w)
			if err != nil {
				return kernel.Pending, err
			}
			if res == kernel.Pending {
				return kernel.Pending, nil
			}
			f.m.Clear()
			f.m.release()
			f.st = opDone
			return kernel.Ready, nil
		case opDone:
			return kernel.Ready, nil
		}
	}
}

// Cancel abandons the hold. A holder blanks the display and passes access
// on; a queued waiter just leaves the queue.
func (f *DisplayFuture) Cancel() {
	switch f.st {
	case opAcquire:
		f.m.dropWaiter(f.w)
	case opHold:
		f.sleep.Cancel()
		f.m.Clear()
		f.m.release()
	}
	f.st = opDone
}

// ScrollFuture slides text across the display one column per step.
//
// The text is laid out as a strip of glyph columns with a one-column gap
// between glyphs; a Rows x Cols window slides over the strip until it runs
// off the end, so the last frame is blank.
type ScrollFuture struct {
	m     *LedMatrix
	text  []rune
	font  Font
	delay time.Duration
	step  int
	total int
	st    opState
	w     kernel.Waker
	sleep *kernel.SleepFuture
}

// Scroll slides text across the display with delay between column steps.
// Runes outside the font are rejected up front under FallbackError, so a
// running scroll never aborts mid-animation.
func (m *LedMatrix) Scroll(text string, font Font, delay time.Duration) (*ScrollFuture, error) {
	runes := []rune(text)
	for _, r := range runes {
		if _, err := font.Glyph(r); err != nil {
			return nil, err
		}
	}
	return &ScrollFuture{
		m:     m,
		text:  runes,
		font:  font,
		delay: delay,
		total: len(runes) * (Cols + 1),
	}, nil
}

// frameAt composes the window at the given strip offset.
func (f *ScrollFuture) frameAt(step int) Frame {
	var out Frame
	for c := 0; c < Cols; c++ {
		strip := step + c
		idx := strip / (Cols + 1)
		within := strip % (Cols + 1)
		if idx < 0 || idx >= len(f.text) || within >= Cols {
			continue
		}
		g, err := f.font.Glyph(f.text[idx])
		if err != nil {
			continue
		}
		for r := 0; r < Rows; r++ {
			if g.rows[r]&(1<<(7-within)) != 0 {
				out.rows[r] |= 1 << (7 - c)
			}
		}
	}
	return out
}

func (f *ScrollFuture) Poll(w kernel.Waker) (kernel.Poll, error) {
	for {
		switch f.st {
		case opAcquire:
			f.w = w
			ok, err := f.m.tryAcquire(w)
			if err != nil {
				return kernel.Pending, err
			}
			if !ok {
				return kernel.Pending, nil
			}
			f.step = 0
			f.m.Apply(f.frameAt(f.step))
			f.sleep = f.m.ex.After(f.delay)
			f.st = opHold
		case opHold:
			res, err := f.sleep.Poll(w)
			if err != nil {
				return kernel.Pending, err
			}
			if res == kernel.Pending {
				return kernel.Pending, nil
			}
			f.step++
			if f.step > f.total {
				f.m.Clear()
				f.m.release()
				f.st = opDone
				return kernel.Ready, nil
			}
			f.m.Apply(f.frameAt(f.step))
			f.sleep = f.m.ex.After(f.delay)
		case opDone:
			return kernel.Ready, nil
		}
	}
}

// Cancel abandons the scroll mid-slide.
func (f *ScrollFuture) Cancel() {
	switch f.st {
	case opAcquire:
		f.m.dropWaiter(f.w)
	case opHold:
		f.sleep.Cancel()
		f.m.Clear()
		f.m.release()
	}
	f.st = opDone
}

// AnimateFuture plays an animation honoring its repeat policy. Once-shot
// animations complete after the last frame's hold; repeating ones run until
// cancelled.
type AnimateFuture struct {
	m     *LedMatrix
	anim  *Animation
	st    opState
	w     kernel.Waker
	sleep *kernel.SleepFuture
}

// Animate plays anim from its first frame.
func (m *LedMatrix) Animate(anim *Animation) (*AnimateFuture, error) {
	if anim.Len() == 0 {
		return nil, fmt.Errorf("display: empty animation")
	}
	return &AnimateFuture{m: m, anim: anim}, nil
}

func (f *AnimateFuture) Poll(w kernel.Waker) (kernel.Poll, error) {
	for {
		switch f.st {
		case opAcquire:
			f.w = w
			ok, err := f.m.tryAcquire(w)
			if err != nil {
				return kernel.Pending, err
			}
			if !ok {
				return kernel.Pending, nil
			}
			f.anim.Rewind()
			f.m.Apply(f.anim.Current())
			f.sleep = f.m.ex.After(f.anim.CurrentHold())
			f.st = opHold
		case opHold:
			res, err := f.sleep.Poll(w)
			if err != nil {
				return kernel.Pending, err
			}
			if res == kernel.Pending {
				return kernel.Pending, nil
			}
			if f.anim.AtEnd() {
				f.m.Clear()
				f.m.release()
				f.st = opDone
				return kernel.Ready, nil
			}
			f.anim.Next()
			f.m.Apply(f.anim.Current())
			f.sleep = f.m.ex.After(f.anim.CurrentHold())
		case opDone:
			return kernel.Ready, nil
		}
	}
}

// Cancel stops playback and blanks the display.
func (f *AnimateFuture) Cancel() {
	switch f.st {
	case opAcquire:
		f.m.dropWaiter(f.w)
	case opHold:
		f.sleep.Cancel()
		f.m.Clear()
		f.m.release()
	}
	f.st = opDone
}
