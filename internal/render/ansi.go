// Package render converts the contents of the VGA text framebuffer into
// terminal output and images.
package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"titanium/device/video"
)

// vgaToANSI maps VGA colour indices to the ANSI colour with the same
// appearance. The two tables order blue and red differently.
var vgaToANSI = [16]ansi.BasicColor{0, 4, 2, 6, 1, 5, 3, 7, 8, 12, 10, 14, 9, 13, 11, 15}

// Screen is a snapshot of a text mode framebuffer.
type Screen struct {
	Cells []uint16
	Cols  int
}

// Rows returns the number of rows on the screen.
func (s Screen) Rows() int {
	if s.Cols == 0 {
		return 0
	}
	return len(s.Cells) / s.Cols
}

// Row returns the characters of row y with trailing blanks removed.
func (s Screen) Row(y int) string {
	var sb strings.Builder
	for _, cell := range s.Cells[y*s.Cols : (y+1)*s.Cols] {
		ch, _, _, _ := video.Decode(cell)
		sb.WriteByte(printable(ch))
	}
	return strings.TrimRight(sb.String(), " ")
}

// UsedRows returns the number of rows up to and including the last row that
// contains text.
func (s Screen) UsedRows() int {
	for y := s.Rows() - 1; y >= 0; y-- {
		if s.Row(y) != "" {
			return y + 1
		}
	}
	return 0
}

// Text writes the screen as plain text, one line per used row.
func Text(w io.Writer, s Screen) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < s.UsedRows(); y++ {
		bw.WriteString(s.Row(y))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ANSI writes the used rows of the screen using SGR sequences for the cell
// colours. A new style is only emitted when the attribute changes. Rows are
// terminated with CRLF so the output also renders on raw terminals.
func ANSI(w io.Writer, s Screen) error {
	bw := bufio.NewWriter(w)

	for y := 0; y < s.UsedRows(); y++ {
		row := s.Cells[y*s.Cols : (y+1)*s.Cols]
		end := len(strings.TrimRight(rowChars(row), " "))

		var (
			cur     video.Attr
			started bool
		)
		for _, cell := range row[:end] {
			attr := video.Attr(cell & 0xff00)
			if !started || attr != cur {
				bw.WriteString(ansi.ResetStyle)
				bw.WriteString(Style(attr).String())
				cur, started = attr, true
			}

			ch, _, _, _ := video.Decode(cell)
			bw.WriteByte(printable(ch))
		}

		bw.WriteString(ansi.ResetStyle)
		bw.WriteString("\r\n")
	}

	return bw.Flush()
}

// Style returns the SGR style for a VGA attribute.
func Style(attr video.Attr) ansi.Style {
	_, bg, fg, blink := video.Decode(uint16(attr))

	style := ansi.Style{}.
		ForegroundColor(vgaToANSI[fg&0x0f]).
		BackgroundColor(vgaToANSI[bg&0x07])
	if blink {
		style = style.Blink(true)
	}
	return style
}

func rowChars(row []uint16) string {
	b := make([]byte, len(row))
	for i, cell := range row {
		ch, _, _, _ := video.Decode(cell)
		b[i] = printable(ch)
	}
	return string(b)
}

// printable maps control and code page 437 graphics characters to a
// space or '?' respectively.
func printable(ch byte) byte {
	switch {
	case ch < ' ':
		return ' '
	case ch >= 0x7f:
		return '?'
	default:
		return ch
	}
}
