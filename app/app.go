// Package app wires the board, kernel and display driver into the running
// system: a refresh scan, an optional boot greeting, and one debounced
// handler task per button.
package app

import (
	"fmt"

	"ember/display"
	"ember/hal"
	"ember/kernel"
)

// System is the assembled runtime.
type System struct {
	ex     *kernel.Executor
	matrix *display.LedMatrix
	btnA   *ButtonHandler
	btnB   *ButtonHandler
}

// NewSystem builds the executor, takes the matrix pins and spawns the
// button handler tasks. Pressing button A shows a left arrow, button B a
// right arrow; the display blanks after the configured hold.
func NewSystem(board hal.Board, cfg Config) (*System, error) {
	ex, err := kernel.New(board.Clock())
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	ex.SetLogger(board.Logger())

	m, err := display.New(ex, board.MatrixRows(), board.MatrixCols())
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	m.SetLogger(board.Logger())
	m.SetBrightness(display.NewBrightness(uint8(cfg.Brightness)))

	sys := &System{
		ex:     ex,
		matrix: m,
		btnA:   NewButtonHandler(board.ButtonA(), m, display.ArrowLeft, cfg.hold(), cfg.debounce()),
		btnB:   NewButtonHandler(board.ButtonB(), m, display.ArrowRight, cfg.hold(), cfg.debounce()),
	}

	if cfg.Greeting != "" {
		font := display.NewFont(display.FallbackBlank)
		scroll, err := m.Scroll(cfg.Greeting, font, cfg.scrollStep())
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		if _, err := ex.Spawn(scroll); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	if _, err := ex.Spawn(sys.btnA); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if _, err := ex.Spawn(sys.btnB); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	return sys, nil
}

// Executor exposes the kernel for embedding entrypoints.
func (s *System) Executor() *kernel.Executor { return s.ex }

// Matrix exposes the display driver.
func (s *System) Matrix() *display.LedMatrix { return s.matrix }

// ButtonA returns the handler task for button A.
func (s *System) ButtonA() *ButtonHandler { return s.btnA }

// ButtonB returns the handler task for button B.
func (s *System) ButtonB() *ButtonHandler { return s.btnB }

// Run starts the refresh scan and blocks in the executor loop until a
// fatal fault halts it.
func (s *System) Run() error {
	s.matrix.Start()
	return s.ex.Run()
}

// Close stops the scan and releases the matrix pins.
func (s *System) Close() error {
	return s.matrix.Close()
}
