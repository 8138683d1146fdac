package sim

import (
	"titanium/kernel/mem"
)

const pageSize = 4096

// Memory is the simulated physical memory. It covers the range
// [0, size) so the kernel sees the same addresses as on hardware.
type Memory struct {
	mem.Buffer

	release func() error
}

// NewMemory maps size bytes of simulated physical memory, rounded up to a
// whole page.
func NewMemory(size mem.Size) (*Memory, error) {
	size = (size + pageSize - 1) &^ (pageSize - 1)

	b, release, err := mapMemory(int(size))
	if err != nil {
		return nil, err
	}

	return &Memory{Buffer: mem.Buffer{Data: b}, release: release}, nil
}

// Close releases the memory. It must not be accessed afterwards.
func (m *Memory) Close() error {
	if m.release == nil {
		return nil
	}

	release := m.release
	m.release, m.Data = nil, nil
	return release()
}
