package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"titanium/device/video"
)

// Glyph cell size in pixels. The default gg font face is 7x13.
const (
	CellWidth  = 8
	CellHeight = 16

	baselineOffset = 12
)

// Image rasterises the screen using palette for the cell colours. Blinking
// cells are drawn in their visible phase.
func Image(s Screen, palette color.Palette) image.Image {
	dc := gg.NewContext(s.Cols*CellWidth, s.Rows()*CellHeight)

	for y := 0; y < s.Rows(); y++ {
		for x := 0; x < s.Cols; x++ {
			ch, bg, fg, _ := video.Decode(s.Cells[y*s.Cols+x])
			px, py := float64(x*CellWidth), float64(y*CellHeight)

			dc.SetColor(paletteColor(palette, bg))
			dc.DrawRectangle(px, py, CellWidth, CellHeight)
			dc.Fill()

			if ch = printable(ch); ch != ' ' {
				dc.SetColor(paletteColor(palette, fg))
				dc.DrawString(string(rune(ch)), px, py+baselineOffset)
			}
		}
	}

	return dc.Image()
}

// Screenshot writes the screen to w as a PNG image.
func Screenshot(w io.Writer, s Screen, palette color.Palette) error {
	return gg.NewContextForImage(Image(s, palette)).EncodePNG(w)
}

func paletteColor(palette color.Palette, c video.Color) color.Color {
	if int(c) < len(palette) {
		return palette[c]
	}
	return color.Black
}
