package allocator

import (
	"io"

	"titanium/kernel"
	"titanium/kernel/kfmt"
	"titanium/kernel/mem"
)

// BumpArena hands out memory from a fixed region by advancing a watermark.
// Allocations are never aligned or reclaimed; Free only updates the debug
// counters.
type BumpArena struct {
	// The region managed by the arena is [base, end).
	base, end uintptr

	// watermark is the address that the next allocation will return.
	watermark uintptr

	allocCount uint64
	freeCount  uint64
}

// init resets the arena so that it manages the region [base, end).
func (a *BumpArena) init(base, end uintptr) {
	a.base, a.end, a.watermark = base, end, base
	a.allocCount, a.freeCount = 0, 0
}

// Allocate reserves size bytes at the current watermark. It returns
// ErrOutOfMemory and leaves the watermark untouched if watermark+size would
// exceed the end of the region.
func (a *BumpArena) Allocate(size mem.Size) (uintptr, *kernel.Error) {
	a.allocCount++

	if uint64(size) > uint64(a.end-a.watermark) {
		return 0, ErrOutOfMemory
	}

	addr := a.watermark
	a.watermark += uintptr(size)
	return addr, nil
}

// Free is a no-op; the arena cannot reclaim memory.
func (a *BumpArena) Free(_ uintptr) {
	a.freeCount++
}

// Watermark returns the address of the next allocation.
func (a *BumpArena) Watermark() uintptr {
	return a.watermark
}

// Region returns the bounds of the managed region.
func (a *BumpArena) Region() (base, end uintptr) {
	return a.base, a.end
}

// Used returns the number of bytes handed out so far.
func (a *BumpArena) Used() mem.Size {
	return mem.Size(a.watermark - a.base)
}

// Remaining returns the number of bytes still available.
func (a *BumpArena) Remaining() mem.Size {
	return mem.Size(a.end - a.watermark)
}

// Counters returns the number of Allocate and Free calls.
func (a *BumpArena) Counters() (allocs, frees uint64) {
	return a.allocCount, a.freeCount
}

// Name implements resource.Resource.
func (a *BumpArena) Name() string {
	return "StaticAllocator"
}

// Start implements resource.Resource.
func (a *BumpArena) Start() kernel.Status {
	return kernel.StatusSuccess
}

// DumpTo prints the arena counters and watermark to w.
func (a *BumpArena) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "%s: allocs=%d frees=%d watermark=0x%8x used=%d/%d\n",
		a.Name(), a.allocCount, a.freeCount, a.watermark,
		uint64(a.Used()), uint64(a.end-a.base),
	)
}
