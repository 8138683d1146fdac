//go:build unix

package sim

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapMemory returns an anonymous private mapping of size bytes.
func mapMemory(size int) ([]byte, func() error, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap physical memory: %w", err)
	}

	return b, func() error { return unix.Munmap(b) }, nil
}
