// Package video implements the colour text-mode framebuffer device.
package video

import (
	"image/color"

	"titanium/device"
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/mem"
)

var (
	// ErrBufferOverflow is returned by Write when the supplied buffer does
	// not match the framebuffer size.
	ErrBufferOverflow = &kernel.Error{Module: "video", Message: "buffer size does not match the framebuffer"}
)

// DAC ports used for palette programming.
const (
	dacWriteIndexPort = 0x3c8
	dacDataPort       = 0x3c9
)

// Framebuffer drives the 80x25 colour text-mode buffer.
type Framebuffer struct {
	fb      []uint16
	cpu     cpu.Privileged
	palette color.Palette
}

// New maps the text framebuffer at physAddr through space and clears it.
func New(space mem.Space, physAddr uintptr, cpu cpu.Privileged) (*Framebuffer, *kernel.Error) {
	b, err := space.Slice(physAddr, mem.Size(mem.VideoCells*2))
	if err != nil {
		return nil, err
	}

	dev := &Framebuffer{
		fb:      mem.Cells(b),
		cpu:     cpu,
		palette: DefaultPalette(),
	}
	dev.ClearBuffer()

	return dev, nil
}

// ClearBuffer zeroes every framebuffer cell.
func (dev *Framebuffer) ClearBuffer() {
	for i := range dev.fb {
		dev.fb[i] = 0
	}
}

// Write copies cells into the framebuffer. It returns ErrBufferOverflow
// without touching the screen unless len(cells) equals the framebuffer
// capacity.
func (dev *Framebuffer) Write(cells []uint16) *kernel.Error {
	if len(cells) != len(dev.fb) {
		return ErrBufferOverflow
	}

	copy(dev.fb, cells)
	return nil
}

// Cells returns the live framebuffer contents.
func (dev *Framebuffer) Cells() []uint16 {
	return dev.fb
}

// TerminalType implements device.CharacterDevice.
func (dev *Framebuffer) TerminalType() device.TerminalType {
	return device.TerminalVideo
}

// Capacity implements device.CharacterDevice.
func (dev *Framebuffer) Capacity() int {
	return len(dev.fb)
}

// Name implements resource.Resource.
func (dev *Framebuffer) Name() string {
	return "Video"
}

// Start implements resource.Resource.
func (dev *Framebuffer) Start() kernel.Status {
	return kernel.StatusSuccess
}

// Palette returns the active color palette.
func (dev *Framebuffer) Palette() color.Palette {
	return dev.palette
}

// SetPaletteColor updates the palette entry at index and loads it into the
// DAC. Indices past the 16 text colors are ignored.
func (dev *Framebuffer) SetPaletteColor(index uint8, rgba color.RGBA) {
	if int(index) >= len(dev.palette) {
		return
	}

	dev.palette[index] = rgba

	// The DAC takes 6-bit components.
	dev.cpu.PortWriteByte(dacWriteIndexPort, index)
	dev.cpu.PortWriteByte(dacDataPort, rgba.R>>2)
	dev.cpu.PortWriteByte(dacDataPort, rgba.G>>2)
	dev.cpu.PortWriteByte(dacDataPort, rgba.B>>2)
}

// DefaultPalette returns the standard 16 EGA colors.
func DefaultPalette() color.Palette {
	return color.Palette{
		color.RGBA{R: 0, G: 0, B: 0, A: 255},       /* black */
		color.RGBA{R: 0, G: 0, B: 170, A: 255},     /* blue */
		color.RGBA{R: 0, G: 170, B: 0, A: 255},     /* green */
		color.RGBA{R: 0, G: 170, B: 170, A: 255},   /* cyan */
		color.RGBA{R: 170, G: 0, B: 0, A: 255},     /* red */
		color.RGBA{R: 170, G: 0, B: 170, A: 255},   /* magenta */
		color.RGBA{R: 170, G: 85, B: 0, A: 255},    /* brown */
		color.RGBA{R: 170, G: 170, B: 170, A: 255}, /* light gray */
		color.RGBA{R: 85, G: 85, B: 85, A: 255},    /* dark gray */
		color.RGBA{R: 85, G: 85, B: 255, A: 255},   /* light blue */
		color.RGBA{R: 85, G: 255, B: 85, A: 255},   /* light green */
		color.RGBA{R: 85, G: 255, B: 255, A: 255},  /* light cyan */
		color.RGBA{R: 255, G: 85, B: 85, A: 255},   /* light red */
		color.RGBA{R: 255, G: 85, B: 255, A: 255},  /* light magenta */
		color.RGBA{R: 255, G: 255, B: 85, A: 255},  /* yellow */
		color.RGBA{R: 255, G: 255, B: 255, A: 255}, /* white */
	}
}
