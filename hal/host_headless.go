//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Frames  uint64 // stop after N frames (0 = run forever)
	Fast    bool   // skip realtime pacing; simulated time only
}

// RunHeadless drives the simulated board without opening a window. Each
// frame advances simulated time by one frame interval and then runs the
// step callback to drain the executor. Scripted runs set Fast to advance
// as quickly as the host allows.
func RunHeadless(ctx context.Context, board *SimBoard, step func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("hal: invalid headless hz: %d", cfg.Hz)
	}

	var tick <-chan time.Time
	if !cfg.Fast {
		t := time.NewTicker(d)
		defer t.Stop()
		tick = t.C
	}

	var frame uint64
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		board.SimClock().Advance(d)
		if step != nil {
			if err := step(); err != nil {
				return err
			}
		}
		frame++
		if cfg.Frames > 0 && frame >= cfg.Frames {
			return nil
		}
	}
}
