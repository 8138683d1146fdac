package video

import (
	"image/color"
	"reflect"
	"testing"

	"titanium/device"
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/mem"
)

func newTestFramebuffer(t *testing.T) (*Framebuffer, *mem.Buffer, *cpu.Recorder) {
	space := &mem.Buffer{Base: mem.VideoBase, Data: make([]byte, mem.VideoCells*2)}
	for i := range space.Data {
		space.Data[i] = 0xaa
	}

	rec := &cpu.Recorder{}
	dev, err := New(space, mem.VideoBase, rec)
	if err != nil {
		t.Fatal(err)
	}

	return dev, space, rec
}

func TestFramebufferNewClearsScreen(t *testing.T) {
	_, space, _ := newTestFramebuffer(t)

	for i, b := range space.Data {
		if b != 0 {
			t.Fatalf("expected byte %d of the framebuffer to be cleared; got 0x%x", i, b)
		}
	}
}

func TestFramebufferNewBadAddress(t *testing.T) {
	space := &mem.Buffer{Base: mem.VideoBase, Data: make([]byte, 16)}
	if _, err := New(space, mem.VideoBase, &cpu.Recorder{}); err != mem.ErrBadAddress {
		t.Fatalf("expected ErrBadAddress; got %v", err)
	}
}

func TestFramebufferWrite(t *testing.T) {
	dev, _, _ := newTestFramebuffer(t)

	specs := []struct {
		size   int
		expErr *kernel.Error
	}{
		{mem.VideoCells, nil},
		{mem.VideoCells - 1, ErrBufferOverflow},
		{mem.VideoCells + 1, ErrBufferOverflow},
		{0, ErrBufferOverflow},
	}

	for specIndex, spec := range specs {
		dev.ClearBuffer()

		cells := make([]uint16, spec.size)
		for i := range cells {
			cells[i] = uint16(0x0700 | (i & 0x7f))
		}

		if err := dev.Write(cells); err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
			continue
		}

		if spec.expErr != nil {
			for i, cell := range dev.Cells() {
				if cell != 0 {
					t.Errorf("[spec %d] expected rejected write to leave cell %d untouched; got 0x%x", specIndex, i, cell)
					break
				}
			}
			continue
		}

		if !reflect.DeepEqual(dev.Cells(), cells) {
			t.Errorf("[spec %d] expected framebuffer to contain the written cells", specIndex)
		}
	}
}

func TestFramebufferDeviceInterface(t *testing.T) {
	dev, _, _ := newTestFramebuffer(t)

	var cd device.CharacterDevice = dev
	if got := cd.TerminalType(); got != device.TerminalVideo {
		t.Errorf("expected terminal type video; got %v", got)
	}

	if got := cd.Capacity(); got != 0x7d0 {
		t.Errorf("expected capacity 0x7d0; got 0x%x", got)
	}

	if got := cd.Name(); got != "Video" {
		t.Errorf("expected name Video; got %q", got)
	}

	if got := cd.Start(); got != kernel.StatusSuccess {
		t.Errorf("expected Start to succeed; got %v", got)
	}
}

func TestFramebufferSetPaletteColor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dev, _, rec := newTestFramebuffer(t)

		rgba := color.RGBA{R: 255, G: 127, B: 0}
		dev.SetPaletteColor(1, rgba)

		if got := dev.Palette()[1]; got != rgba {
			t.Errorf("expected color at index 1 to be:\n%v\ngot:\n%v", rgba, got)
		}

		// Values are normalized in the 0-63 range
		expWrites := []cpu.PortWrite{
			{Port: 0x3c8, Value: 1},
			{Port: 0x3c9, Value: 63},
			{Port: 0x3c9, Value: 31},
			{Port: 0x3c9, Value: 0},
		}

		if !reflect.DeepEqual(rec.PortWrites, expWrites) {
			t.Errorf("expected port writes %v; got %v", expWrites, rec.PortWrites)
		}
	})

	t.Run("color index out of range", func(t *testing.T) {
		dev, _, rec := newTestFramebuffer(t)

		dev.SetPaletteColor(50, color.RGBA{R: 255})
		if len(rec.PortWrites) != 0 {
			t.Errorf("unexpected port writes: %v", rec.PortWrites)
		}
	})
}
