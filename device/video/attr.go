package video

// Color is one of the 16 text-mode colors.
type Color uint8

// The text-mode colors in VGA order.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

// Attr is a cell attribute shifted into the high byte of a 16-bit cell, so
// that a cell is formed by OR-ing an Attr with a character.
type Attr uint16

// BlinkBit is the attribute bit that makes a cell blink.
const BlinkBit Attr = 1 << 15

// MakeAttr builds the attribute for the given background and foreground
// colors. The blink bit is set only when blink is true.
func MakeAttr(bg, fg Color, blink bool) Attr {
	attr := Attr((uint16(bg&0x7)<<4)|uint16(fg&0xf)) << 8
	if blink {
		attr |= BlinkBit
	}
	return attr
}

// Cell combines a character and an attribute into a framebuffer cell.
func Cell(ch byte, attr Attr) uint16 {
	return uint16(ch) | uint16(attr)
}

// Decode splits a framebuffer cell into its parts.
func Decode(cell uint16) (ch byte, bg, fg Color, blink bool) {
	return byte(cell), Color((cell >> 12) & 0x7), Color((cell >> 8) & 0xf), cell&uint16(BlinkBit) != 0
}

// DefaultAttr is light gray text on a black background.
var DefaultAttr = MakeAttr(Black, LightGray, false)
