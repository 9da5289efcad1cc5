//go:build !tinygo

// glyphdump renders text as 5x5 matrix frames on stdout, either one glyph
// per block or as the column-by-column slide a scroll would show. Handy for
// checking font coverage before flashing.
package main

import (
	"flag"
	"fmt"
	"os"

	"ember/display"
)

func main() {
	var (
		scroll = flag.Bool("scroll", false, "Emit the sliding scroll sequence instead of whole glyphs.")
		blank  = flag.Bool("blank", false, "Render unsupported runes blank instead of failing.")
	)
	flag.Parse()

	text := flag.Arg(0)
	if text == "" {
		fatalf("usage: glyphdump [-scroll] [-blank] TEXT")
	}

	policy := display.FallbackError
	if *blank {
		policy = display.FallbackBlank
	}
	font := display.NewFont(policy)

	if *scroll {
		if err := dumpScroll(font, text); err != nil {
			fatalf("%v", err)
		}
		return
	}
	for _, r := range text {
		g, err := font.Glyph(r)
		if err != nil {
			fatalf("%q: %v", r, err)
		}
		fmt.Printf("%q\n%s\n\n", r, render(g))
	}
}

// dumpScroll emits the frame sequence of a slide: a strip of glyph columns
// with one spacer column between glyphs, windowed one column per step.
func dumpScroll(font display.Font, text string) error {
	runes := []rune(text)
	glyphs := make([]display.Frame, len(runes))
	for i, r := range runes {
		g, err := font.Glyph(r)
		if err != nil {
			return fmt.Errorf("%q: %w", r, err)
		}
		glyphs[i] = g
	}

	stride := display.Cols + 1
	total := len(runes) * stride
	for step := 0; step <= total; step++ {
		var f display.Frame
		for c := 0; c < display.Cols; c++ {
			strip := step + c
			idx := strip / stride
			within := strip % stride
			if idx >= len(glyphs) || within >= display.Cols {
				continue
			}
			for row := 0; row < display.Rows; row++ {
				if on, _ := glyphs[idx].Get(row, within); on {
					f.Set(row, c, true)
				}
			}
		}
		fmt.Printf("step %d\n%s\n\n", step, render(f))
	}
	return nil
}

func render(f display.Frame) string {
	out := make([]byte, 0, display.Rows*(display.Cols+1))
	for r := 0; r < display.Rows; r++ {
		for c := 0; c < display.Cols; c++ {
			if on, _ := f.Get(r, c); on {
				out = append(out, '#')
			} else {
				out = append(out, '.')
			}
		}
		if r < display.Rows-1 {
			out = append(out, '\n')
		}
	}
	return string(out)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
