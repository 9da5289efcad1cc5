//go:build !tinygo

package hal

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ember/internal/buildinfo"
)

// Key bindings for the simulated board.
var (
	keysButtonA = []ebiten.Key{ebiten.KeyZ, ebiten.KeyArrowLeft}
	keysButtonB = []ebiten.Key{ebiten.KeyX, ebiten.KeyArrowRight}
)

const windowScale = 48

// RunWindow opens a desktop window showing the simulated LED matrix and
// mapping keys to the buttons (Z / left arrow = A, X / right arrow = B;
// up and down arrows call the brightness hook when set). Simulated time
// advances one frame interval per tick; the step callback drains the
// executor after each advance. Blocks until the window closes.
func RunWindow(board *SimBoard, step func() error, opts ...WindowOption) error {
	g := &simGame{
		board: board,
		frame: time.Second / 60,
		step:  step,
	}
	for _, opt := range opts {
		opt(g)
	}
	rows := len(board.MatrixRows())
	cols := len(board.MatrixCols())
	ebiten.SetWindowTitle("ember (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cols*windowScale, rows*windowScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

// WindowOption customizes the simulator window.
type WindowOption func(*simGame)

// WithBrightnessKeys installs handlers for the up and down arrow keys.
func WithBrightnessKeys(up, down func()) WindowOption {
	return func(g *simGame) {
		g.brightUp = up
		g.brightDown = down
	}
}

type simGame struct {
	board *SimBoard
	frame time.Duration
	step  func() error

	brightUp   func()
	brightDown func()

	duty   [][]float64
	img    *image.RGBA
	ledImg *ebiten.Image
	prevA  bool
	prevB  bool
}

func (g *simGame) Update() error {
	g.pollButtons()
	g.board.SimClock().Advance(g.frame)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	g.duty = g.board.Panel().Duty()
	return nil
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func (g *simGame) pollButtons() {
	if g.brightUp != nil && inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.brightUp()
	}
	if g.brightDown != nil && inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.brightDown()
	}

	a := anyKeyPressed(keysButtonA)
	b := anyKeyPressed(keysButtonB)
	if a != g.prevA {
		if a {
			g.board.SimButtonA().Press()
		} else {
			g.board.SimButtonA().Release()
		}
		g.prevA = a
	}
	if b != g.prevB {
		if b {
			g.board.SimButtonB().Press()
		} else {
			g.board.SimButtonB().Release()
		}
		g.prevB = b
	}
}

func (g *simGame) Draw(screen *ebiten.Image) {
	rows := len(g.board.MatrixRows())
	cols := len(g.board.MatrixCols())
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, cols, rows))
		g.ledImg = ebiten.NewImage(cols, rows)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var level float64
			if g.duty != nil {
				level = g.duty[r][c]
			}
			if level > 1 {
				level = 1
			}
			g.img.SetRGBA(c, r, color.RGBA{R: uint8(40 + 215*level), G: uint8(10 * level), B: uint8(10 * level), A: 0xFF})
		}
	}
	g.ledImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.ledImg, nil)
}

func (g *simGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return len(g.board.MatrixCols()), len(g.board.MatrixRows())
}
