package tty

import (
	"io"

	"titanium/device"
	"titanium/device/video"
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/mem"
)

// CRT controller ports and registers used for the hardware cursor.
const (
	crtIndexPort     = 0x3d4
	crtDataPort      = 0x3d5
	crtCursorLocHigh = 14
	crtCursorLocLow  = 15
)

// Console routes output to the active terminal and mirrors the terminal
// buffer to its device after every write.
type Console struct {
	active *Terminal
	cpu    cpu.Privileged
}

// NewConsole creates a console without an active terminal. The cpu is used
// for programming the hardware cursor.
func NewConsole(cpu cpu.Privileged) *Console {
	return &Console{cpu: cpu}
}

// SwitchTerminal makes t the active terminal, clears its device and copies
// the terminal buffer to it.
func (c *Console) SwitchTerminal(t *Terminal) *kernel.Error {
	c.active = t
	t.dev.ClearBuffer()
	return c.copyBuffer()
}

// ActiveTerminal returns the active terminal or nil.
func (c *Console) ActiveTerminal() *Terminal {
	return c.active
}

// Write implements io.Writer. Output stops at the first NUL byte; the
// remaining bytes are consumed but discarded.
func (c *Console) Write(p []byte) (int, error) {
	if c.active == nil {
		return 0, io.ErrClosedPipe
	}

	return c.finishWrite(len(p), c.active.Write(p))
}

// WriteColor writes p using attr and then restores the previous attribute.
func (c *Console) WriteColor(p []byte, attr video.Attr) (int, error) {
	if c.active == nil {
		return 0, io.ErrClosedPipe
	}

	t := c.active
	prev := t.attr
	t.SetColor(attr)
	err := t.Write(p)
	t.SetColor(prev)

	return c.finishWrite(len(p), err)
}

// Put stores ch at (x, y) on the active terminal and refreshes the device.
func (c *Console) Put(x, y int, ch byte) *kernel.Error {
	if c.active == nil {
		return ErrInvalidTerminal
	}

	if err := c.active.PutAt(x, y, ch); err != nil {
		return err
	}

	return c.copyBuffer()
}

// finishWrite updates the cursor and syncs the device after a terminal
// write.
func (c *Console) finishWrite(n int, writeErr *kernel.Error) (int, error) {
	if c.active.typ == device.TerminalVideo {
		c.updateCursor()
	}

	copyErr := c.copyBuffer()

	switch {
	case writeErr != nil:
		return 0, writeErr
	case copyErr != nil:
		return n, copyErr
	}

	return n, nil
}

// updateCursor places a blinking blank at the cursor position and moves the
// hardware cursor there.
func (c *Console) updateCursor() {
	t := c.active
	t.PutAtColor(t.x, t.y, ' ', t.attr|video.BlinkBit)

	pos := uint16(t.y*mem.VideoColumns + t.x)
	c.cpu.PortWriteByte(crtIndexPort, crtCursorLocHigh)
	c.cpu.PortWriteByte(crtDataPort, uint8(pos>>8))
	c.cpu.PortWriteByte(crtIndexPort, crtCursorLocLow)
	c.cpu.PortWriteByte(crtDataPort, uint8(pos))
}

func (c *Console) copyBuffer() *kernel.Error {
	return c.active.dev.Write(c.active.buf)
}

// Name implements resource.Resource.
func (c *Console) Name() string {
	return "Console"
}

// Start implements resource.Resource.
func (c *Console) Start() kernel.Status {
	return kernel.StatusSuccess
}
