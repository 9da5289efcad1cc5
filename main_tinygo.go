//go:build tinygo

package main

import (
	"ember/app"
	"ember/hal"
)

func main() {
	board := hal.NewBoard()
	sys, err := app.NewSystem(board, app.LoadConfig(""))
	if err != nil {
		board.Logger().WriteLineString(err.Error())
		return
	}
	if err := sys.Run(); err != nil {
		board.Logger().WriteLineString(err.Error())
	}
}
