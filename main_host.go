//go:build !tinygo && !periph

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ember/app"
	"ember/display"
	"ember/hal"
)

func main() {
	var (
		hc         hal.HeadlessConfig
		configPath string
		scriptPath string
	)
	flag.BoolVar(&hc.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hc.Hz, "hz", 60, "Frame rate in headless mode.")
	flag.Uint64Var(&hc.Frames, "frames", 0, "Stop after N frames in headless mode (0 = run forever).")
	flag.BoolVar(&hc.Fast, "fast", false, "Skip realtime pacing in headless mode.")
	flag.StringVar(&configPath, "config", "", "Path to ember.yaml.")
	flag.StringVar(&scriptPath, "script", "", "Path to a YAML button event script (headless).")
	flag.Parse()

	cfg := app.LoadConfig(configPath)
	board := hal.NewSimBoard(display.Rows, display.Cols)

	sys, err := app.NewSystem(board, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sys.Close()
	sys.Matrix().Start()
	step := sys.Executor().Drain

	if hc.Enabled {
		if scriptPath != "" {
			script, err := app.LoadScript(scriptPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			script.Bind(board)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, board, step, hc); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	m := sys.Matrix()
	err = hal.RunWindow(board, step, hal.WithBrightnessKeys(
		func() { m.SetBrightness(m.Brightness().Inc()) },
		func() { m.SetBrightness(m.Brightness().Dec()) },
	))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
