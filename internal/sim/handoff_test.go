package sim

import (
	"testing"

	"titanium/kernel/hal/multiboot"
	"titanium/kernel/mem"
)

func TestWriteHandoff(t *testing.T) {
	space := &mem.Buffer{Data: make([]byte, 0x10000)}
	p := DefaultProfile()

	if err := WriteHandoff(space, p); err != nil {
		t.Fatal(err)
	}

	info, err := multiboot.ReadInfo(space, uintptr(p.InfoAddr))
	if err != nil {
		t.Fatal(err)
	}

	if info.Flags != multiboot.Flag(*p.Flags) {
		t.Errorf("expected flags %b; got %b", *p.Flags, info.Flags)
	}

	if exp, got := p.Memory.Lower+p.Memory.Upper, info.MemorySize(); got != exp {
		t.Errorf("expected memory size %d; got %d", exp, got)
	}

	if got := info.CmdLineString(); got != p.CmdLine {
		t.Errorf("expected command line %q; got %q", p.CmdLine, got)
	}

	if exp, got := uint8(0x80), info.BootDrive(); got != exp {
		t.Errorf("expected boot drive 0x%x; got 0x%x", exp, got)
	}

	var visited int
	info.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) bool {
		r := p.MemoryMap[visited]
		if entry.PhysAddress != uint64(r.Base) || entry.Length != uint64(r.Length) || entry.Type.String() != r.Type {
			t.Errorf("[spec %d] expected region %+v; got %+v", visited, r, *entry)
		}
		visited++
		return true
	})

	if visited != len(p.MemoryMap) {
		t.Errorf("expected %d memory regions; got %d", len(p.MemoryMap), visited)
	}
}

func TestWriteHandoffErrors(t *testing.T) {
	t.Run("info block not mapped", func(t *testing.T) {
		p := DefaultProfile()
		p.InfoAddr = 0x100000

		if err := WriteHandoff(&mem.Buffer{Data: make([]byte, 0x10000)}, p); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("command line too long", func(t *testing.T) {
		p := DefaultProfile()
		p.CmdLine = string(make([]byte, 256))

		if err := WriteHandoff(&mem.Buffer{Data: make([]byte, 0x10000)}, p); err == nil {
			t.Fatal("expected an error")
		}
	})
}
