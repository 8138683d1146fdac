package tty

import (
	"testing"

	"titanium/device"
	"titanium/device/video"
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/mem"
	"titanium/kernel/mem/allocator"
)

// machine bundles the pieces needed to build terminals in tests.
type machine struct {
	space *mem.Buffer
	alloc *allocator.Kernel
	cpu   *cpu.Recorder
	fb    *video.Framebuffer
}

func newMachine(t *testing.T) *machine {
	t.Helper()

	m := &machine{
		space: &mem.Buffer{Base: 0, Data: make([]byte, mem.StaticAllocEnd)},
		cpu:   &cpu.Recorder{},
	}

	var err *kernel.Error
	if m.alloc, err = allocator.New(m.space, mem.StaticAllocBase, mem.StaticAllocSize); err != nil {
		t.Fatal(err)
	}

	if m.fb, err = video.New(m.space, mem.VideoBase, m.cpu); err != nil {
		t.Fatal(err)
	}

	return m
}

func (m *machine) newTerminal(t *testing.T) *Terminal {
	t.Helper()

	term, err := NewTerminal(m.fb, m.alloc, m.space)
	if err != nil {
		t.Fatal(err)
	}
	return term
}

// serialDevice is a CharacterDevice that is not backed by a screen.
type serialDevice struct {
	clears, writes int
}

func (d *serialDevice) Name() string                      { return "Serial" }
func (d *serialDevice) Start() kernel.Status              { return kernel.StatusSuccess }
func (d *serialDevice) ClearBuffer()                      { d.clears++ }
func (d *serialDevice) Write(_ []uint16) *kernel.Error    { d.writes++; return nil }
func (d *serialDevice) TerminalType() device.TerminalType { return device.TerminalSerial }
func (d *serialDevice) Capacity() int                     { return 0 }

func cellAt(term *Terminal, x, y int) uint16 {
	return term.Buffer()[y*mem.VideoColumns+x]
}

func rowText(term *Terminal, y int) string {
	var row [mem.VideoColumns]byte
	for x := range row {
		row[x] = byte(cellAt(term, x, y))
	}
	return string(row[:])
}
