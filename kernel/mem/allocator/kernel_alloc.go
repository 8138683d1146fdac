package allocator

import (
	"io"
	"unsafe"

	"titanium/kernel"
	"titanium/kernel/kfmt"
	"titanium/kernel/mem"
)

// Kernel is the allocator used by the rest of the kernel. It forwards every
// request to its active strategy, which during early boot is a BumpArena
// living right after the Kernel header in the static region.
type Kernel struct {
	active Allocator
	arena  *BumpArena

	allocCount uint64
	freeCount  uint64
}

// headerSize is the footprint reserved at the start of the static region for
// the Kernel allocator followed by its arena.
const headerSize = unsafe.Sizeof(Kernel{}) + unsafe.Sizeof(BumpArena{})

// New constructs a Kernel allocator and its arena in place at the start of
// the static region [base, base+size) and returns it. No memory is obtained
// from the Go allocator; the arena watermark starts right after the two
// headers.
func New(space mem.Space, base uintptr, size mem.Size) (*Kernel, *kernel.Error) {
	if uint64(size) <= uint64(headerSize) {
		return nil, errRegionTooSmall
	}

	header, err := space.Slice(base, mem.Size(headerSize))
	if err != nil {
		return nil, err
	}
	mem.Memset(header, 0)

	k := (*Kernel)(unsafe.Pointer(&header[0]))
	arena := (*BumpArena)(unsafe.Pointer(&header[unsafe.Sizeof(Kernel{})]))
	arena.init(base+headerSize, base+uintptr(size))

	k.arena = arena
	k.active = arena
	return k, nil
}

// Allocate forwards the request to the active strategy.
func (k *Kernel) Allocate(size mem.Size) (uintptr, *kernel.Error) {
	k.allocCount++
	return k.active.Allocate(size)
}

// Free forwards the request to the active strategy.
func (k *Kernel) Free(addr uintptr) {
	k.freeCount++
	k.active.Free(addr)
}

// Arena returns the bump arena backing this allocator.
func (k *Kernel) Arena() *BumpArena {
	return k.arena
}

// Counters returns the number of Allocate and Free calls.
func (k *Kernel) Counters() (allocs, frees uint64) {
	return k.allocCount, k.freeCount
}

// Name implements resource.Resource.
func (k *Kernel) Name() string {
	return "KernelAllocator"
}

// Start implements resource.Resource.
func (k *Kernel) Start() kernel.Status {
	return kernel.StatusSuccess
}

// DumpTo prints the allocator counters followed by the arena state to w.
func (k *Kernel) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "%s: allocs=%d frees=%d\n", k.Name(), k.allocCount, k.freeCount)
	k.arena.DumpTo(w)
}
