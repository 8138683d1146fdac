package mem

import (
	"testing"
	"unsafe"
)

func TestBufferSlice(t *testing.T) {
	buf := &Buffer{Base: 0x1000, Data: make([]byte, 64)}

	specs := []struct {
		addr   uintptr
		size   Size
		expErr bool
	}{
		{0x1000, 64, false},
		{0x1010, 16, false},
		{0x103f, 1, false},
		{0x0fff, 1, true},
		{0x1030, 17, true},
		{0x1040, 1, true},
		{0x1000, 0, true},
	}

	for specIndex, spec := range specs {
		b, err := buf.Slice(spec.addr, spec.size)
		switch {
		case spec.expErr && err != ErrBadAddress:
			t.Errorf("[spec %d] expected ErrBadAddress; got %v", specIndex, err)
		case !spec.expErr && err != nil:
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
		case !spec.expErr && Size(len(b)) != spec.size:
			t.Errorf("[spec %d] expected slice of len %d; got %d", specIndex, spec.size, len(b))
		}
	}

	// Writes through the slice must land in the backing buffer
	b, _ := buf.Slice(0x1004, 4)
	b[0] = 0xaa
	if buf.Data[4] != 0xaa {
		t.Fatal("expected writes through Slice to update the backing buffer")
	}
}

func TestDirectSlice(t *testing.T) {
	backing := []byte{1, 2, 3, 4}
	addr := uintptr(unsafe.Pointer(&backing[0]))

	b, err := Direct.Slice(addr, 4)
	if err != nil {
		t.Fatal(err)
	}

	b[3] = 9
	if backing[3] != 9 {
		t.Fatal("expected Direct.Slice to alias the underlying memory")
	}

	if _, err = Direct.Slice(0, 4); err != ErrBadAddress {
		t.Fatalf("expected ErrBadAddress for the null address; got %v", err)
	}
}

func TestCellsAndReadUint32(t *testing.T) {
	buf := &Buffer{Base: 0, Data: []byte{0x41, 0x07, 0x42, 0x0f, 0xff}}

	cells := Cells(buf.Data[:4])
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells; got %d", len(cells))
	}

	if cells[0] != 0x0741 || cells[1] != 0x0f42 {
		t.Fatalf("expected cells [0x0741 0x0f42]; got [0x%x 0x%x]", cells[0], cells[1])
	}

	if Cells(buf.Data[:1]) != nil {
		t.Fatal("expected Cells to return nil for a slice shorter than a cell")
	}

	val, err := ReadUint32(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if exp := uint32(0x0f420741); val != exp {
		t.Fatalf("expected ReadUint32 to return 0x%x; got 0x%x", exp, val)
	}

	if _, err = ReadUint32(buf, 2); err != ErrBadAddress {
		t.Fatalf("expected ErrBadAddress when reading past the buffer; got %v", err)
	}
}

func TestMemset(t *testing.T) {
	for _, size := range []int{0, 1, 7, 64, 1000} {
		b := make([]byte, size)
		Memset(b, 0xfe)
		for i, v := range b {
			if v != 0xfe {
				t.Errorf("[size %d] expected byte %d to be 0xfe; got 0x%x", size, i, v)
				break
			}
		}
	}
}

func TestLayoutConstants(t *testing.T) {
	if StaticAllocBase != KernelEnd {
		t.Errorf("expected the static region to start at the kernel end")
	}

	if StaticAllocEnd != 0x210000 {
		t.Errorf("expected static region end to be 0x210000; got 0x%x", StaticAllocEnd)
	}

	if VideoCells != 0x7d0 {
		t.Errorf("expected 0x7d0 video cells; got 0x%x", VideoCells)
	}
}
