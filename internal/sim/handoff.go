package sim

import (
	"encoding/binary"
	"fmt"

	"titanium/kernel/mem"
)

const (
	infoBlockSize = 52
	cmdLineOffset = 0x100
	mmapOffset    = 0x200
	mmapEntrySize = 24
)

// WriteHandoff lays out the multiboot information block described by p in
// space. The command line and memory map are placed after the block.
func WriteHandoff(space mem.Space, p *Profile) error {
	infoAddr := uintptr(p.InfoAddr)
	cmdLineAddr := infoAddr + cmdLineOffset
	mmapAddr := infoAddr + mmapOffset

	if len(p.CmdLine)+1 > mmapOffset-cmdLineOffset {
		return fmt.Errorf("command line longer than %d bytes", mmapOffset-cmdLineOffset-1)
	}

	info, err := space.Slice(infoAddr, infoBlockSize)
	if err != nil {
		return fmt.Errorf("info block at 0x%x: %w", infoAddr, err)
	}

	mmap := make([]byte, 0, len(p.MemoryMap)*mmapEntrySize)
	for _, r := range p.MemoryMap {
		typ, err := regionType(r.Type)
		if err != nil {
			return err
		}

		mmap = binary.LittleEndian.AppendUint32(mmap, mmapEntrySize-4)
		mmap = binary.LittleEndian.AppendUint64(mmap, uint64(r.Base))
		mmap = binary.LittleEndian.AppendUint64(mmap, uint64(r.Length))
		mmap = binary.LittleEndian.AppendUint32(mmap, uint32(typ))
	}

	words := []uint32{
		uint32(*p.Flags),
		p.Memory.Lower,
		p.Memory.Upper,
		uint32(p.BootDevice),
		uint32(cmdLineAddr),
		0, 0, // modules
		0, 0, 0, 0, // symbols
		uint32(len(mmap)),
		uint32(mmapAddr),
	}
	for i, w := range words {
		binary.LittleEndian.PutUint32(info[i*4:], w)
	}

	cmdLine, err := space.Slice(cmdLineAddr, mem.Size(len(p.CmdLine)+1))
	if err != nil {
		return fmt.Errorf("command line at 0x%x: %w", cmdLineAddr, err)
	}
	copy(cmdLine, p.CmdLine)
	cmdLine[len(p.CmdLine)] = 0

	if len(mmap) != 0 {
		dst, err := space.Slice(mmapAddr, mem.Size(len(mmap)))
		if err != nil {
			return fmt.Errorf("memory map at 0x%x: %w", mmapAddr, err)
		}
		copy(dst, mmap)
	}

	return nil
}
