package multiboot

import (
	"encoding/binary"
	"reflect"
	"testing"

	"titanium/kernel"
	"titanium/kernel/mem"
)

const (
	testInfoAddr    = 0x9000
	testCmdLineAddr = 0x9100
	testMmapAddr    = 0x9200
)

// newTestSpace returns a memory space holding an information block at
// testInfoAddr with the supplied flags.
func newTestSpace(flags Flag) *mem.Buffer {
	space := &mem.Buffer{Base: 0x8000, Data: make([]byte, 0x2000)}

	putWord := func(addr uintptr, v uint32) {
		binary.LittleEndian.PutUint32(space.Data[addr-space.Base:], v)
	}

	putWord(testInfoAddr, uint32(flags))
	putWord(testInfoAddr+4, 639)
	putWord(testInfoAddr+8, 130048)
	putWord(testInfoAddr+12, 0x80ffffff)
	putWord(testInfoAddr+16, testCmdLineAddr)
	copy(space.Data[testCmdLineAddr-space.Base:], "root=/dev/hda1 quiet console=tty0\x00")

	entries := []MemoryMapEntry{
		{PhysAddress: 0, Length: 0x9fc00, Type: MemAvailable},
		{PhysAddress: 0x9fc00, Length: 0x400, Type: MemReserved},
		{PhysAddress: 0x100000, Length: 0x7ee0000, Type: MemAvailable},
		{PhysAddress: 0x7fe0000, Length: 0x20000, Type: MemoryEntryType(42)},
	}
	cur := uintptr(testMmapAddr)
	for _, e := range entries {
		putWord(cur, 20)
		binary.LittleEndian.PutUint64(space.Data[cur+4-space.Base:], e.PhysAddress)
		binary.LittleEndian.PutUint64(space.Data[cur+12-space.Base:], e.Length)
		putWord(cur+20, uint32(e.Type))
		cur += 24
	}
	putWord(testInfoAddr+44, uint32(len(entries)*24))
	putWord(testInfoAddr+48, testMmapAddr)

	return space
}

func TestReadInfo(t *testing.T) {
	space := newTestSpace(FlagMemory | FlagBootDevice | FlagCmdLine | FlagMemoryMap)

	info, err := ReadInfo(space, testInfoAddr)
	if err != nil {
		t.Fatal(err)
	}

	if !info.Has(FlagMemory | FlagMemoryMap) {
		t.Errorf("expected memory and memory map flags to be set; flags: %b", info.Flags)
	}

	if info.Has(FlagModules) {
		t.Error("expected modules flag to be clear")
	}

	if exp, got := uint32(639+130048), info.MemorySize(); got != exp {
		t.Errorf("expected memory size to be %d; got %d", exp, got)
	}

	if exp, got := uint8(0x80), info.BootDrive(); got != exp {
		t.Errorf("expected boot drive to be 0x%x; got 0x%x", exp, got)
	}

	if _, err = ReadInfo(space, 0x100000); err != mem.ErrBadAddress {
		t.Errorf("expected to get ErrBadAddress; got %v", err)
	}
}

func TestMemorySizeWithoutFlag(t *testing.T) {
	info, err := ReadInfo(newTestSpace(FlagBootDevice), testInfoAddr)
	if err != nil {
		t.Fatal(err)
	}

	if got := info.MemorySize(); got != 0 {
		t.Errorf("expected memory size to be 0; got %d", got)
	}
}

func TestCmdLine(t *testing.T) {
	info, err := ReadInfo(newTestSpace(FlagCmdLine), testInfoAddr)
	if err != nil {
		t.Fatal(err)
	}

	if exp, got := "root=/dev/hda1 quiet console=tty0", info.CmdLineString(); got != exp {
		t.Errorf("expected command line to be %q; got %q", exp, got)
	}

	exp := map[string]string{
		"root":    "/dev/hda1",
		"quiet":   "quiet",
		"console": "tty0",
	}
	if got := info.CmdLineArgs(); !reflect.DeepEqual(got, exp) {
		t.Errorf("expected parsed command line to be:\n%v\ngot:\n%v", exp, got)
	}

	info.Flags = 0
	if got := info.CmdLineString(); got != "" {
		t.Errorf("expected an empty command line when the flag is clear; got %q", got)
	}
}

func TestVisitMemRegions(t *testing.T) {
	info, err := ReadInfo(newTestSpace(FlagMemoryMap), testInfoAddr)
	if err != nil {
		t.Fatal(err)
	}

	specs := []struct {
		expPhys uint64
		expLen  uint64
		expType MemoryEntryType
	}{
		{0, 0x9fc00, MemAvailable},
		{0x9fc00, 0x400, MemReserved},
		{0x100000, 0x7ee0000, MemAvailable},
		// unknown types are reported as reserved
		{0x7fe0000, 0x20000, MemReserved},
	}

	var visited int
	err = info.VisitMemRegions(func(entry *MemoryMapEntry) bool {
		if visited >= len(specs) {
			t.Fatalf("visitor called more than %d times", len(specs))
		}

		spec := specs[visited]
		if entry.PhysAddress != spec.expPhys || entry.Length != spec.expLen || entry.Type != spec.expType {
			t.Errorf("[spec %d] expected entry {0x%x 0x%x %s}; got {0x%x 0x%x %s}",
				visited, spec.expPhys, spec.expLen, spec.expType,
				entry.PhysAddress, entry.Length, entry.Type)
		}
		visited++
		return true
	})

	if err != nil {
		t.Fatal(err)
	}

	if visited != len(specs) {
		t.Errorf("expected visitor to be called %d times; got %d", len(specs), visited)
	}

	t.Run("abort scan", func(t *testing.T) {
		var calls int
		info.VisitMemRegions(func(_ *MemoryMapEntry) bool {
			calls++
			return false
		})

		if calls != 1 {
			t.Errorf("expected visitor to be called once; got %d", calls)
		}
	})

	t.Run("missing map", func(t *testing.T) {
		info.Flags = 0
		if err := info.VisitMemRegions(func(_ *MemoryMapEntry) bool { return true }); err != errNoMemoryMap {
			t.Errorf("expected to get errNoMemoryMap; got %v", err)
		}
	})
}

func TestVisitMemRegionsBounds(t *testing.T) {
	specs := []struct {
		setup     func(space *mem.Buffer, info *Info)
		expVisits int
		expErr    *kernel.Error
	}{
		// last entry cut short by mmap_length
		{
			func(_ *mem.Buffer, info *Info) { info.MmapLength = 3*24 + 10 },
			3,
			nil,
		},
		// map too short for a single entry
		{
			func(_ *mem.Buffer, info *Info) { info.MmapLength = 23 },
			0,
			nil,
		},
		// an entry whose size word is below the region size is skipped
		{
			func(space *mem.Buffer, info *Info) {
				m := space.Data[testMmapAddr-space.Base:]
				binary.LittleEndian.PutUint32(m[0:], 8)
				for _, off := range []int{12, 36} {
					binary.LittleEndian.PutUint32(m[off:], 20)
					binary.LittleEndian.PutUint64(m[off+4:], 0x100000)
					binary.LittleEndian.PutUint64(m[off+12:], 0x1000)
					binary.LittleEndian.PutUint32(m[off+20:], uint32(MemAvailable))
				}
				info.MmapLength = 60
			},
			2,
			nil,
		},
		// the last entry may declare a size running past the map
		{
			func(space *mem.Buffer, _ *Info) {
				binary.LittleEndian.PutUint32(space.Data[testMmapAddr+3*24-space.Base:], 0x1000)
			},
			4,
			nil,
		},
		// map wraps around the 32-bit address space
		{
			func(_ *mem.Buffer, info *Info) {
				info.MmapAddr = 0xfffffff0
				info.MmapLength = 0x100
			},
			0,
			errMemoryMapEnd,
		},
	}

	for specIndex, spec := range specs {
		space := newTestSpace(FlagMemoryMap)
		info, err := ReadInfo(space, testInfoAddr)
		if err != nil {
			t.Fatal(err)
		}
		spec.setup(space, info)

		var visits int
		err = info.VisitMemRegions(func(_ *MemoryMapEntry) bool {
			visits++
			return true
		})

		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}

		if visits != spec.expVisits {
			t.Errorf("[spec %d] expected %d visits; got %d", specIndex, spec.expVisits, visits)
		}
	}
}

func TestMemoryEntryTypeString(t *testing.T) {
	specs := []struct {
		input MemoryEntryType
		exp   string
	}{
		{MemAvailable, "available"},
		{MemReserved, "reserved"},
		{MemAcpiReclaimable, "ACPI (reclaimable)"},
		{MemNvs, "NVS"},
		{memUnknown, "unknown"},
	}

	for specIndex, spec := range specs {
		if got := spec.input.String(); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}
