// Package gdt builds the global descriptor table for flat 32-bit protected
// mode and loads it into the CPU.
package gdt

import (
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/mem"
	"titanium/kernel/mem/allocator"
)

// Segment selectors installed by the table.
const (
	KernelCodeSelector uint16 = 0x08
	KernelDataSelector uint16 = 0x10
)

// Entries is the number of descriptors in the table: null, kernel code and
// kernel data.
const Entries = 3

// Descriptor attributes for the flat kernel segments.
const (
	accessKernelCode = 0x9a // present, ring 0, executable, readable
	accessKernelData = 0x92 // present, ring 0, writable
	flags4KPages32   = 0xcf // 4K granularity, 32-bit operands
	flatLimit        = 0xffffffff
)

// Table owns the descriptor entries and the LGDT operand. Both live in
// memory obtained from the kernel allocator.
type Table struct {
	cpu cpu.Privileged

	entriesAddr uintptr
	pointerAddr uintptr
	entries     []byte
	pointer     []byte

	loaded bool
}

// New allocates storage for the descriptor table and its pointer.
func New(alloc allocator.Allocator, space mem.Space, cpu cpu.Privileged) (*Table, *kernel.Error) {
	t := &Table{cpu: cpu}

	var err *kernel.Error
	if t.pointerAddr, t.pointer, err = allocBytes(alloc, space, pointerSize); err != nil {
		return nil, err
	}

	if t.entriesAddr, t.entries, err = allocBytes(alloc, space, Entries*entrySize); err != nil {
		return nil, err
	}

	return t, nil
}

func allocBytes(alloc allocator.Allocator, space mem.Space, size mem.Size) (uintptr, []byte, *kernel.Error) {
	addr, err := alloc.Allocate(size)
	if err != nil {
		return 0, nil, err
	}

	b, err := space.Slice(addr, size)
	if err != nil {
		return 0, nil, err
	}

	return addr, b, nil
}

// Start fills in the descriptors, loads the table and reloads every segment
// register. The sequence runs once; later calls return StatusFailure
// without touching the CPU.
func (t *Table) Start() kernel.Status {
	if t.loaded {
		return kernel.StatusFailure
	}

	Pointer{
		Limit: Entries*entrySize - 1,
		Base:  uint32(t.entriesAddr),
	}.Encode(t.pointer)

	t.setGate(0, 0, 0, 0, 0)
	t.setGate(KernelCodeSelector, 0, flatLimit, accessKernelCode, flags4KPages32)
	t.setGate(KernelDataSelector, 0, flatLimit, accessKernelData, flags4KPages32)

	t.cpu.LoadGDT(t.pointerAddr)
	t.cpu.ReloadSegments(KernelCodeSelector, KernelDataSelector)

	t.loaded = true
	return kernel.StatusSuccess
}

// setGate writes the descriptor for selector into the table.
func (t *Table) setGate(selector uint16, base, limit uint32, access, flags uint8) {
	offset := int(selector/8) * entrySize
	NewEntry(base, limit, access, flags).Encode(t.entries[offset : offset+entrySize])
}

// Entry decodes the descriptor for selector from the table memory.
func (t *Table) Entry(selector uint16) Entry {
	offset := int(selector/8) * entrySize
	return DecodeEntry(t.entries[offset : offset+entrySize])
}

// Pointer decodes the LGDT operand from memory.
func (t *Table) Pointer() Pointer {
	return DecodePointer(t.pointer)
}

// PointerAddr returns the physical address of the LGDT operand.
func (t *Table) PointerAddr() uintptr {
	return t.pointerAddr
}

// Loaded returns true once Start has completed.
func (t *Table) Loaded() bool {
	return t.loaded
}

// Name implements resource.Resource.
func (t *Table) Name() string {
	return "Global Descriptor Table"
}
