// Package allocator implements the early kernel memory allocators: a
// monotonic bump arena over the static allocation region and the kernel
// allocator that fronts it.
package allocator

import (
	"titanium/kernel"
	"titanium/kernel/mem"
)

var (
	// ErrOutOfMemory is returned when a request does not fit in the
	// remaining arena space.
	ErrOutOfMemory = &kernel.Error{Module: "static_alloc", Message: "out of memory"}

	errRegionTooSmall = &kernel.Error{Module: "kernel_alloc", Message: "static region cannot hold the allocator headers"}
)

// Allocator is implemented by objects that hand out physical memory.
type Allocator interface {
	// Allocate reserves size bytes and returns the address of the first
	// byte or ErrOutOfMemory.
	Allocate(size mem.Size) (uintptr, *kernel.Error)

	// Free releases a previous allocation.
	Free(addr uintptr)
}
