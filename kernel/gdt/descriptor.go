package gdt

import "encoding/binary"

// Size of the encoded structures in bytes.
const (
	entrySize   = 8
	pointerSize = 6
)

// Entry is a 32-bit segment descriptor. Field order matches the in-memory
// layout.
type Entry struct {
	LimitLow    uint16
	BaseLow     uint16
	BaseMiddle  uint8
	Access      uint8
	Granularity uint8
	BaseHigh    uint8
}

// NewEntry builds a descriptor. Only the low 20 bits of limit are stored;
// the upper nibble of flags supplies the granularity and size bits.
func NewEntry(base, limit uint32, access, flags uint8) Entry {
	return Entry{
		LimitLow:    uint16(limit & 0xffff),
		BaseLow:     uint16(base & 0xffff),
		BaseMiddle:  uint8((base >> 16) & 0xff),
		Access:      access,
		Granularity: uint8((limit>>16)&0x0f) | (flags & 0xf0),
		BaseHigh:    uint8((base >> 24) & 0xff),
	}
}

// Base returns the segment base address.
func (e Entry) Base() uint32 {
	return uint32(e.BaseLow) | uint32(e.BaseMiddle)<<16 | uint32(e.BaseHigh)<<24
}

// Limit returns the 20-bit segment limit.
func (e Entry) Limit() uint32 {
	return uint32(e.LimitLow) | uint32(e.Granularity&0x0f)<<16
}

// Flags returns the granularity and size flags.
func (e Entry) Flags() uint8 {
	return e.Granularity & 0xf0
}

// Encode writes the descriptor to b, which must hold at least 8 bytes.
func (e Entry) Encode(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], e.LimitLow)
	binary.LittleEndian.PutUint16(b[2:], e.BaseLow)
	b[4] = e.BaseMiddle
	b[5] = e.Access
	b[6] = e.Granularity
	b[7] = e.BaseHigh
}

// DecodeEntry reads a descriptor from b.
func DecodeEntry(b []byte) Entry {
	return Entry{
		LimitLow:    binary.LittleEndian.Uint16(b[0:]),
		BaseLow:     binary.LittleEndian.Uint16(b[2:]),
		BaseMiddle:  b[4],
		Access:      b[5],
		Granularity: b[6],
		BaseHigh:    b[7],
	}
}

// Pointer is the packed 6-byte operand of the LGDT instruction.
type Pointer struct {
	Limit uint16
	Base  uint32
}

// Encode writes the pointer to b, which must hold at least 6 bytes.
func (p Pointer) Encode(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], p.Limit)
	binary.LittleEndian.PutUint32(b[2:], p.Base)
}

// DecodePointer reads a pointer from b.
func DecodePointer(b []byte) Pointer {
	return Pointer{
		Limit: binary.LittleEndian.Uint16(b[0:]),
		Base:  binary.LittleEndian.Uint32(b[2:]),
	}
}
