package app

import (
	"fmt"
	"os"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"
	yaml "github.com/goccy/go-yaml"

	"ember/hal"
)

// ScriptEvent is one timed input action for the simulated board.
type ScriptEvent struct {
	AtMS   int    `yaml:"at_ms"`
	Button string `yaml:"button"` // "a" or "b"
	Action string `yaml:"action"` // "press" or "release"
}

// Script replays timed button events against a simulated board. Events are
// kept in a min-heap ordered by deadline so out-of-order entries in the
// source file still fire chronologically.
type Script struct {
	heap *binaryheap.Heap
}

func eventBefore(a, b interface{}) int {
	ea, eb := a.(ScriptEvent), b.(ScriptEvent)
	return ea.AtMS - eb.AtMS
}

// NewScript builds an empty script.
func NewScript() *Script {
	return &Script{heap: binaryheap.NewWith(eventBefore)}
}

// LoadScript reads a YAML event list.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: script: %w", err)
	}
	var events []ScriptEvent
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("app: script: %w", err)
	}
	s := NewScript()
	for _, ev := range events {
		if err := s.Add(ev); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add queues one event.
func (s *Script) Add(ev ScriptEvent) error {
	switch ev.Button {
	case "a", "b":
	default:
		return fmt.Errorf("app: script: unknown button %q", ev.Button)
	}
	switch ev.Action {
	case "press", "release":
	default:
		return fmt.Errorf("app: script: unknown action %q", ev.Action)
	}
	s.heap.Push(ev)
	return nil
}

// Len reports the number of pending events.
func (s *Script) Len() int { return s.heap.Size() }

// Bind attaches the script to a simulated board: every clock advance pops
// and applies the events whose deadline has passed.
func (s *Script) Bind(board *hal.SimBoard) {
	board.SimClock().OnAdvance(func(from, to uint64) {
		for {
			top, ok := s.heap.Peek()
			if !ok {
				return
			}
			ev := top.(ScriptEvent)
			due := hal.Micros(time.Duration(ev.AtMS) * time.Millisecond)
			if due > to {
				return
			}
			s.heap.Pop()
			btn := board.SimButtonA()
			if ev.Button == "b" {
				btn = board.SimButtonB()
			}
			if ev.Action == "press" {
				btn.Press()
			} else {
				btn.Release()
			}
		}
	})
}
