package app

import (
	"time"

	"ember/display"
	"ember/hal"
	"ember/input"
	"ember/kernel"
)

type buttonPhase uint8

const (
	btnWaitEdge buttonPhase = iota
	btnDebounce
	btnShow
)

// ButtonHandler is a long-running task: wait for a falling edge on its
// button, debounce, resample, and show a glyph while holding the display.
// A press that does not survive the debounce resample is a bounce and is
// dropped. The task never completes on its own.
type ButtonHandler struct {
	pin      hal.InputPin
	matrix   *display.LedMatrix
	glyph    display.Frame
	hold     time.Duration
	debounce time.Duration

	phase    buttonPhase
	edge     *input.EdgeFuture
	settle   *kernel.SleepFuture
	show     *display.DisplayFuture
	presses  uint32
	bounces  uint32
}

// NewButtonHandler builds the handler task for one button.
func NewButtonHandler(pin hal.InputPin, m *display.LedMatrix, glyph display.Frame, hold, debounce time.Duration) *ButtonHandler {
	return &ButtonHandler{
		pin:      pin,
		matrix:   m,
		glyph:    glyph,
		hold:     hold,
		debounce: debounce,
	}
}

// Presses reports how many debounced presses have been handled.
func (h *ButtonHandler) Presses() uint32 { return h.presses }

// Bounces reports how many edges were dropped by the debounce resample.
func (h *ButtonHandler) Bounces() uint32 { return h.bounces }

func (h *ButtonHandler) Poll(w kernel.Waker) (kernel.Poll, error) {
	for {
		switch h.phase {
		case btnWaitEdge:
			if h.edge == nil {
				h.edge = input.WaitFall(h.pin)
			}
			res, err := h.edge.Poll(w)
			if err != nil {
				return kernel.Pending, err
			}
			if res == kernel.Pending {
				return kernel.Pending, nil
			}
			h.edge = nil
			h.settle = nil
			h.phase = btnDebounce
		case btnDebounce:
			if h.settle == nil {
				h.settle = h.matrix.Executor().After(h.debounce)
			}
			res, err := h.settle.Poll(w)
			if err != nil {
				return kernel.Pending, err
			}
			if res == kernel.Pending {
				return kernel.Pending, nil
			}
			h.settle = nil
			pressed, err := input.Pressed(h.pin)
			if err != nil {
				return kernel.Pending, err
			}
			if !pressed {
				h.bounces++
				h.phase = btnWaitEdge
				continue
			}
			h.presses++
			h.show = nil
			h.phase = btnShow
		case btnShow:
			if h.show == nil {
				h.show = h.matrix.Display(h.glyph, h.hold)
			}
			res, err := h.show.Poll(w)
			if err != nil {
				return kernel.Pending, err
			}
			if res == kernel.Pending {
				return kernel.Pending, nil
			}
			h.show = nil
			h.phase = btnWaitEdge
		}
	}
}
