// Package tty implements the kernel terminals and the console that routes
// output to the active terminal.
package tty

import (
	"titanium/device"
	"titanium/device/video"
	"titanium/kernel"
	"titanium/kernel/mem"
	"titanium/kernel/mem/allocator"
)

var (
	// ErrInvalidTerminal is returned when an operation is not supported
	// by the type of device the terminal is attached to.
	ErrInvalidTerminal = &kernel.Error{Module: "tty", Message: "operation not supported by this terminal type"}

	errNoTextOutput = &kernel.Error{Module: "tty", Message: "terminal type does not support text output"}
	errOutOfBounds  = &kernel.Error{Module: "tty", Message: "coordinates outside the terminal"}
)

// Special characters interpreted by Terminal.
const (
	chBackspace = 0x08
	chTab       = 0x09
	tabWidth    = 8
)

// Terminal keeps a private cell buffer and a cursor for a character device.
// Text written to the terminal only reaches the device when the console
// copies the buffer out.
type Terminal struct {
	dev  device.CharacterDevice
	typ  device.TerminalType
	buf  []uint16
	attr video.Attr

	x, y       int
	cols, rows int
}

// NewTerminal creates a terminal for dev. For video devices the cell buffer
// is obtained from alloc, accessed through space and filled with the default
// attribute.
func NewTerminal(dev device.CharacterDevice, alloc allocator.Allocator, space mem.Space) (*Terminal, *kernel.Error) {
	t := &Terminal{
		dev: dev,
		typ: dev.TerminalType(),
	}

	if t.typ != device.TerminalVideo {
		return t, nil
	}

	size := mem.Size(dev.Capacity() * 2)
	addr, err := alloc.Allocate(size)
	if err != nil {
		return nil, err
	}

	b, err := space.Slice(addr, size)
	if err != nil {
		return nil, err
	}

	t.attr = video.DefaultAttr
	t.buf = mem.Cells(b)
	t.cols = mem.VideoColumns
	t.rows = len(t.buf) / t.cols
	for i := range t.buf {
		t.buf[i] = uint16(t.attr)
	}

	return t, nil
}

// Write copies seq into the buffer one character at a time, stopping at the
// first NUL byte or after a full screen of characters.
func (t *Terminal) Write(seq []byte) *kernel.Error {
	if t.typ != device.TerminalVideo {
		return errNoTextOutput
	}

	for n := 0; n < len(t.buf) && n < len(seq) && seq[n] != 0; n++ {
		t.put(seq[n])
	}

	return nil
}

// put interprets a single character and advances the cursor.
func (t *Terminal) put(ch byte) {
	switch {
	case ch == chBackspace:
		if t.x != 0 {
			t.x--
			t.buf[t.y*t.cols+t.x] = ' '
		}
	case ch == chTab:
		t.x += tabWidth
	case ch == '\r':
		t.x = 0
	case ch == '\n':
		t.x = 0
		t.y++
	case ch >= ' ':
		t.buf[t.y*t.cols+t.x] = video.Cell(ch, t.attr)
		t.x++
	}

	if t.x >= t.cols {
		t.x = 0
		t.y++
	}

	t.scroll()
}

// scroll moves the buffer contents up by one row once the cursor has left
// the last row. The freed row is filled with the current attribute.
func (t *Terminal) scroll() {
	if t.y < t.rows {
		return
	}

	copy(t.buf, t.buf[t.cols:])
	for i := len(t.buf) - t.cols; i < len(t.buf); i++ {
		t.buf[i] = uint16(t.attr)
	}
	t.y = t.rows - 1
}

// PutAt stores ch with the current attribute at (x, y) without moving the
// cursor.
func (t *Terminal) PutAt(x, y int, ch byte) *kernel.Error {
	return t.PutAtColor(x, y, ch, t.attr)
}

// PutAtColor stores ch with attr at (x, y) without moving the cursor.
func (t *Terminal) PutAtColor(x, y int, ch byte, attr video.Attr) *kernel.Error {
	if t.typ != device.TerminalVideo {
		return ErrInvalidTerminal
	}

	if x < 0 || x >= t.cols || y < 0 || y >= t.rows {
		return errOutOfBounds
	}

	t.buf[y*t.cols+x] = video.Cell(ch, attr)
	return nil
}

// SetColor changes the attribute used for subsequent output.
func (t *Terminal) SetColor(attr video.Attr) *kernel.Error {
	if t.typ != device.TerminalVideo {
		return ErrInvalidTerminal
	}

	t.attr = attr
	return nil
}

// Color returns the current attribute.
func (t *Terminal) Color() video.Attr {
	return t.attr
}

// Cursor returns the cursor position as a 0-based (column, row) pair.
func (t *Terminal) Cursor() (x, y int) {
	return t.x, t.y
}

// Buffer returns the terminal cell buffer.
func (t *Terminal) Buffer() []uint16 {
	return t.buf
}

// Type returns the type of the underlying device.
func (t *Terminal) Type() device.TerminalType {
	return t.typ
}

// Name implements resource.Resource.
func (t *Terminal) Name() string {
	return "Terminal"
}

// Start implements resource.Resource.
func (t *Terminal) Start() kernel.Status {
	return kernel.StatusSuccess
}
