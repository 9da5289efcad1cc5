//go:build periph && !tinygo

package main

import (
	"flag"
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"ember/app"
	"ember/hal"
)

func main() {
	var (
		configPath string
		pinoutPath string
	)
	flag.StringVar(&configPath, "config", "", "Path to ember.yaml.")
	flag.StringVar(&pinoutPath, "pinout", "pinout.yaml", "Path to the GPIO pinout map.")
	flag.Parse()

	data, err := os.ReadFile(pinoutPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var pinout hal.PeriphPinout
	if err := yaml.Unmarshal(data, &pinout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	board, err := hal.NewPeriphBoard(pinout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sys, err := app.NewSystem(board, app.LoadConfig(configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sys.Close()
	if err := sys.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
