package display

const (
	printableStart = 32
	printableCount = 95
)

// pendolino3 is the 5x5 bitmap font from lancaster-university/microbit-dal
// (MicroBitFont.cpp, v2.1.1), one row byte per matrix row with the glyph in
// the low 5 bits.
var pendolino3 = [printableCount][5]uint8{
	{0x0, 0x0, 0x0, 0x0, 0x0},
	{0x8, 0x8, 0x8, 0x0, 0x8},
	{0xa, 0x4a, 0x40, 0x0, 0x0},
	{0xa, 0x5f, 0xea, 0x5f, 0xea},
	{0xe, 0xd9, 0x2e, 0xd3, 0x6e},
	{0x19, 0x32, 0x44, 0x89, 0x33},
	{0xc, 0x92, 0x4c, 0x92, 0x4d},
	{0x8, 0x8, 0x0, 0x0, 0x0},
	{0x4, 0x88, 0x8, 0x8, 0x4},
	{0x8, 0x4, 0x84, 0x84, 0x88},
	{0x0, 0xa, 0x44, 0x8a, 0x40},
	{0x0, 0x4, 0x8e, 0xc4, 0x80},
	{0x0, 0x0, 0x0, 0x4, 0x88},
	{0x0, 0x0, 0xe, 0xc0, 0x0},
	{0x0, 0x0, 0x0, 0x8, 0x0},
	{0x1, 0x22, 0x44, 0x88, 0x10},
	{0xc, 0x92, 0x52, 0x52, 0x4c},
	{0x4, 0x8c, 0x84, 0x84, 0x8e},
	{0x1c, 0x82, 0x4c, 0x90, 0x1e},
	{0x1e, 0xc2, 0x44, 0x92, 0x4c},
	{0x6, 0xca, 0x52, 0x5f, 0xe2},
	{0x1f, 0xf0, 0x1e, 0xc1, 0x3e},
	{0x2, 0x44, 0x8e, 0xd1, 0x2e},
	{0x1f, 0xe2, 0x44, 0x88, 0x10},
	{0xe, 0xd1, 0x2e, 0xd1, 0x2e},
	{0xe, 0xd1, 0x2e, 0xc4, 0x88},
	{0x0, 0x8, 0x0, 0x8, 0x0},
	{0x0, 0x4, 0x80, 0x4, 0x88},
	{0x2, 0x44, 0x88, 0x4, 0x82},
	{0x0, 0xe, 0xc0, 0xe, 0xc0},
	{0x8, 0x4, 0x82, 0x44, 0x88},
	{0xe, 0xd1, 0x26, 0xc0, 0x4},
	{0xe, 0xd1, 0x35, 0xb3, 0x6c},
	{0xc, 0x92, 0x5e, 0xd2, 0x52},
	{0x1c, 0x92, 0x5c, 0x92, 0x5c},
	{0xe, 0xd0, 0x10, 0x10, 0xe},
	{0x1c, 0x92, 0x52, 0x52, 0x5c},
	{0x1e, 0xd0, 0x1c, 0x90, 0x1e},
	{0x1e, 0xd0, 0x1c, 0x90, 0x10},
	{0xe, 0xd0, 0x13, 0x71, 0x2e},
	{0x12, 0x52, 0x5e, 0xd2, 0x52},
	{0x1c, 0x88, 0x8, 0x8, 0x1c},
	{0x1f, 0xe2, 0x42, 0x52, 0x4c},
	{0x12, 0x54, 0x98, 0x14, 0x92},
	{0x10, 0x10, 0x10, 0x10, 0x1e},
	{0x11, 0x3b, 0x75, 0xb1, 0x31},
	{0x11, 0x39, 0x35, 0xb3, 0x71},
	{0xc, 0x92, 0x52, 0x52, 0x4c},
	{0x1c, 0x92, 0x5c, 0x90, 0x10},
	{0xc, 0x92, 0x52, 0x4c, 0x86},
	{0x1c, 0x92, 0x5c, 0x92, 0x51},
	{0xe, 0xd0, 0xc, 0x82, 0x5c},
	{0x1f, 0xe4, 0x84, 0x84, 0x84},
	{0x12, 0x52, 0x52, 0x52, 0x4c},
	{0x11, 0x31, 0x31, 0x2a, 0x44},
	{0x11, 0x31, 0x35, 0xbb, 0x71},
	{0x12, 0x52, 0x4c, 0x92, 0x52},
	{0x11, 0x2a, 0x44, 0x84, 0x84},
	{0x1e, 0xc4, 0x88, 0x10, 0x1e},
	{0xe, 0xc8, 0x8, 0x8, 0xe},
	{0x10, 0x8, 0x4, 0x82, 0x41},
	{0xe, 0xc2, 0x42, 0x42, 0x4e},
	{0x4, 0x8a, 0x40, 0x0, 0x0},
	{0x0, 0x0, 0x0, 0x0, 0x1f},
	{0x8, 0x4, 0x80, 0x0, 0x0},
	{0x0, 0xe, 0xd2, 0x52, 0x4f},
	{0x10, 0x10, 0x1c, 0x92, 0x5c},
	{0x0, 0xe, 0xd0, 0x10, 0xe},
	{0x2, 0x42, 0x4e, 0xd2, 0x4e},
	{0xc, 0x92, 0x5c, 0x90, 0xe},
	{0x6, 0xc8, 0x1c, 0x88, 0x8},
	{0xe, 0xd2, 0x4e, 0xc2, 0x4c},
	{0x10, 0x10, 0x1c, 0x92, 0x52},
	{0x8, 0x0, 0x8, 0x8, 0x8},
	{0x2, 0x40, 0x2, 0x42, 0x4c},
	{0x10, 0x14, 0x98, 0x14, 0x92},
	{0x8, 0x8, 0x8, 0x8, 0x6},
	{0x0, 0x1b, 0x75, 0xb1, 0x31},
	{0x0, 0x1c, 0x92, 0x52, 0x52},
	{0x0, 0xc, 0x92, 0x52, 0x4c},
	{0x0, 0x1c, 0x92, 0x5c, 0x90},
	{0x0, 0xe, 0xd2, 0x4e, 0xc2},
	{0x0, 0xe, 0xd0, 0x10, 0x10},
	{0x0, 0x6, 0xc8, 0x4, 0x98},
	{0x8, 0x8, 0xe, 0xc8, 0x7},
	{0x0, 0x12, 0x52, 0x52, 0x4f},
	{0x0, 0x11, 0x31, 0x2a, 0x44},
	{0x0, 0x11, 0x31, 0x35, 0xbb},
	{0x0, 0x12, 0x4c, 0x8c, 0x92},
	{0x0, 0x11, 0x2a, 0x44, 0x98},
	{0x0, 0x1e, 0xc4, 0x88, 0x1e},
	{0x6, 0xc4, 0x8c, 0x84, 0x86},
	{0x8, 0x8, 0x8, 0x8, 0x8},
	{0x18, 0x8, 0xc, 0x88, 0x18},
	{0x0, 0x0, 0xc, 0x83, 0x60},
}
