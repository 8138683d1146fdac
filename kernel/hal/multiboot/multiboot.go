// Package multiboot decodes the information block handed over by a
// multiboot (version 1) compliant boot loader.
package multiboot

import (
	"encoding/binary"
	"strings"

	"titanium/kernel"
	"titanium/kernel/mem"
)

// BootloaderMagic is the value a compliant loader passes in EAX.
const BootloaderMagic uint32 = 0x2badb002

// Flag describes which fields of the information block are valid.
type Flag uint32

// The information block flag bits.
const (
	FlagMemory      Flag = 1 << iota // mem_lower / mem_upper
	FlagBootDevice                   // boot_device
	FlagCmdLine                      // cmdline
	FlagModules                      // mods_count / mods_addr
	FlagAoutSymbols                  // a.out symbol table
	FlagElfSections                  // ELF section header table
	FlagMemoryMap                    // mmap_length / mmap_addr
)

const (
	// infoSize covers the fields up to and including mmap_addr.
	infoSize = 52

	// maxCmdLineLen bounds the scan for the command line terminator.
	maxCmdLineLen = 4096

	// mmapEntrySize is the size of a memory map entry excluding its size
	// word.
	mmapEntrySize = 20
)

var (
	errNoMemoryMap  = &kernel.Error{Module: "multiboot", Message: "memory map not provided"}
	errMemoryMapEnd = &kernel.Error{Module: "multiboot", Message: "memory map runs past the end of the address space"}
)

// Info is the decoded information block.
type Info struct {
	Flags      Flag
	MemLower   uint32 // kB of memory below 1M
	MemUpper   uint32 // kB of memory above 1M
	BootDevice uint32
	CmdLine    uint32
	ModsCount  uint32
	ModsAddr   uint32
	Syms       [4]uint32
	MmapLength uint32
	MmapAddr   uint32

	space mem.Space
}

// ReadInfo decodes the information block at addr.
func ReadInfo(space mem.Space, addr uintptr) (*Info, *kernel.Error) {
	b, err := space.Slice(addr, infoSize)
	if err != nil {
		return nil, err
	}

	word := func(index int) uint32 {
		return binary.LittleEndian.Uint32(b[index*4:])
	}

	info := &Info{
		Flags:      Flag(word(0)),
		MemLower:   word(1),
		MemUpper:   word(2),
		BootDevice: word(3),
		CmdLine:    word(4),
		ModsCount:  word(5),
		ModsAddr:   word(6),
		MmapLength: word(11),
		MmapAddr:   word(12),
		space:      space,
	}
	for i := range info.Syms {
		info.Syms[i] = word(7 + i)
	}

	return info, nil
}

// Has returns true if all bits in f are set.
func (info *Info) Has(f Flag) bool {
	return info.Flags&f == f
}

// MemorySize returns the lower plus upper memory in kB, or 0 if the loader
// did not report it.
func (info *Info) MemorySize() uint32 {
	if !info.Has(FlagMemory) {
		return 0
	}
	return info.MemLower + info.MemUpper
}

// BootDrive returns the BIOS drive number the kernel was loaded from.
func (info *Info) BootDrive() uint8 {
	return uint8(info.BootDevice >> 24)
}

// CmdLineString returns the NUL-terminated command line passed to the
// kernel or an empty string if none was passed.
func (info *Info) CmdLineString() string {
	if !info.Has(FlagCmdLine) || info.CmdLine == 0 {
		return ""
	}

	var sb strings.Builder
	for n := uintptr(0); n < maxCmdLineLen; n++ {
		b, err := info.space.Slice(uintptr(info.CmdLine)+n, 1)
		if err != nil || b[0] == 0 {
			break
		}
		sb.WriteByte(b[0])
	}

	return sb.String()
}

// CmdLineArgs returns the command line as key-value pairs. Flags without a
// value map to themselves.
func (info *Info) CmdLineArgs() map[string]string {
	kv := make(map[string]string)
	for _, pair := range strings.Fields(info.CmdLineString()) {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			v = k
		}
		kv[k] = v
	}
	return kv
}

// MemoryEntryType defines the type of a MemoryMapEntry.
type MemoryEntryType uint32

const (
	// MemAvailable indicates that the memory region is available for use.
	MemAvailable MemoryEntryType = iota + 1

	// MemReserved indicates that the memory region is not available for use.
	MemReserved

	// MemAcpiReclaimable indicates a memory region that holds ACPI info that
	// can be reused by the OS.
	MemAcpiReclaimable

	// MemNvs indicates memory that must be preserved when hibernating.
	MemNvs

	// Any value >= memUnknown will be mapped to MemReserved.
	memUnknown
)

// String implements fmt.Stringer for MemoryEntryType.
func (t MemoryEntryType) String() string {
	switch t {
	case MemAvailable:
		return "available"
	case MemReserved:
		return "reserved"
	case MemAcpiReclaimable:
		return "ACPI (reclaimable)"
	case MemNvs:
		return "NVS"
	default:
		return "unknown"
	}
}

// MemoryMapEntry describes a memory region reported by the loader.
type MemoryMapEntry struct {
	PhysAddress uint64
	Length      uint64
	Type        MemoryEntryType
}

// MemRegionVisitor is invoked by VisitMemRegions for each memory region. It
// returns false to stop the scan.
type MemRegionVisitor func(*MemoryMapEntry) bool

// VisitMemRegions invokes visitor for each memory map entry. Each entry is
// prefixed by its size, which does not include the size field itself.
func (info *Info) VisitMemRegions(visitor MemRegionVisitor) *kernel.Error {
	if !info.Has(FlagMemoryMap) {
		return errNoMemoryMap
	}

	if info.MmapAddr+info.MmapLength < info.MmapAddr {
		return errMemoryMapEnd
	}

	var (
		cur   = uintptr(info.MmapAddr)
		end   = cur + uintptr(info.MmapLength)
		entry MemoryMapEntry
	)

	// Each entry is a size word followed by at least mmapEntrySize bytes;
	// the size word does not count itself.
	for end-cur >= 4+mmapEntrySize {
		entrySize, err := mem.ReadUint32(info.space, cur)
		if err != nil {
			return err
		}

		next := cur + 4 + uintptr(entrySize)
		if next < cur {
			return errMemoryMapEnd
		}

		// Entries too short to describe a region are skipped.
		if entrySize >= mmapEntrySize {
			b, err := info.space.Slice(cur+4, mmapEntrySize)
			if err != nil {
				return err
			}

			entry.PhysAddress = binary.LittleEndian.Uint64(b[0:])
			entry.Length = binary.LittleEndian.Uint64(b[8:])
			entry.Type = MemoryEntryType(binary.LittleEndian.Uint32(b[16:]))

			// Mark unknown entry types as reserved
			if entry.Type == 0 || entry.Type >= memUnknown {
				entry.Type = MemReserved
			}

			if !visitor(&entry) {
				return nil
			}
		}

		if next > end {
			break
		}
		cur = next
	}

	return nil
}
