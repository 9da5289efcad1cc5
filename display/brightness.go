package display

// Brightness is the duty-cycle setting for the matrix: the fraction of each
// row slice the row stays lit, in levels 0 (off) through 10 (full slice).
type Brightness uint8

const (
	BrightnessMin     Brightness = 0
	BrightnessMax     Brightness = 10
	BrightnessDefault Brightness = 5
)

// NewBrightness clamps level into the legal range.
func NewBrightness(level uint8) Brightness {
	if level > uint8(BrightnessMax) {
		return BrightnessMax
	}
	return Brightness(level)
}

func (b Brightness) Level() uint8 { return uint8(b) }

// Inc returns the next brighter level, saturating at the maximum.
func (b Brightness) Inc() Brightness {
	if b >= BrightnessMax {
		return BrightnessMax
	}
	return b + 1
}

// Dec returns the next dimmer level, saturating at zero.
func (b Brightness) Dec() Brightness {
	if b == BrightnessMin {
		return BrightnessMin
	}
	return b - 1
}
