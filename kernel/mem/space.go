package mem

import (
	"encoding/binary"
	"unsafe"

	"titanium/kernel"
)

var (
	// ErrBadAddress is returned when a physical range is not backed by the
	// memory space.
	ErrBadAddress = &kernel.Error{Module: "mem", Message: "physical address range is not mapped"}
)

// Space provides byte-level access to physical memory. The kernel uses
// Direct which overlays the identity-mapped physical address space, while
// the host simulator supplies a Buffer.
type Space interface {
	// Slice returns a byte slice overlaying the physical range
	// [addr, addr+size).
	Slice(addr uintptr, size Size) ([]byte, *kernel.Error)
}

type directSpace struct{}

// Direct is a Space that maps physical addresses one-to-one. It must only be
// used when running on bare metal.
var Direct Space = directSpace{}

func (directSpace) Slice(addr uintptr, size Size) ([]byte, *kernel.Error) {
	if addr == 0 || size == 0 {
		return nil, ErrBadAddress
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)), nil
}

// Buffer is a Space backed by a byte slice that represents the physical
// range [Base, Base+len(Data)).
type Buffer struct {
	Base uintptr
	Data []byte
}

// Slice implements Space.
func (b *Buffer) Slice(addr uintptr, size Size) ([]byte, *kernel.Error) {
	if addr < b.Base || size == 0 {
		return nil, ErrBadAddress
	}

	offset := uint64(addr - b.Base)
	if offset+uint64(size) > uint64(len(b.Data)) {
		return nil, ErrBadAddress
	}

	return b.Data[offset : offset+uint64(size) : offset+uint64(size)], nil
}

// Cells reinterprets a byte slice as a slice of 16-bit cells. The length of
// the returned slice is len(b)/2.
func Cells(b []byte) []uint16 {
	if len(b) < 2 {
		return nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), len(b)/2)
}

// ReadUint32 reads a little-endian uint32 from the physical address addr.
func ReadUint32(space Space, addr uintptr) (uint32, *kernel.Error) {
	b, err := space.Slice(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Memset sets every byte of b to value.
func Memset(b []byte, value byte) {
	if len(b) == 0 {
		return
	}

	// Fill the first byte and keep doubling the copied region.
	b[0] = value
	for filled := 1; filled < len(b); filled *= 2 {
		copy(b[filled:], b[:filled])
	}
}
