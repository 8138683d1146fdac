package mem

// Physical memory layout used by the early boot code.
const (
	// KernelBase is the physical address where the loader places the
	// kernel image.
	KernelBase uintptr = 0x100000

	// KernelEnd is the first physical address past the kernel image.
	KernelEnd uintptr = 0x200000

	// StaticAllocBase is the start of the region managed by the static
	// allocator. It begins right after the kernel image.
	StaticAllocBase = KernelEnd

	// StaticAllocSize is the size of the static allocation region.
	StaticAllocSize = 64 * Kb

	// StaticAllocEnd is the first address past the static region.
	StaticAllocEnd = StaticAllocBase + uintptr(StaticAllocSize)

	// VideoBase is the physical address of the colour text-mode
	// framebuffer.
	VideoBase uintptr = 0xb8000

	// VideoColumns and VideoRows describe the text-mode geometry.
	VideoColumns = 80
	VideoRows    = 25

	// VideoCells is the number of 16-bit cells in the text framebuffer.
	VideoCells = VideoColumns * VideoRows
)
