package sim

import (
	"context"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"titanium/kernel"
	"titanium/kernel/mem"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunDefaultProfile(t *testing.T) {
	res, err := Run(context.Background(), DefaultProfile(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.BootErr != nil {
		t.Fatalf("unexpected boot error: %v", res.BootErr)
	}

	if res.Halted() {
		t.Error("expected the CPU not to be halted")
	}

	for _, o := range res.System.Manager.Outcomes() {
		if o.Status != kernel.StatusSuccess {
			t.Errorf("expected %q to start successfully; got %s", o.Name, o.Status)
		}
	}

	if got := res.System.Checker.MemorySize(); got != 639+130048 {
		t.Errorf("expected memory size %d; got %d", 639+130048, got)
	}

	if len(res.Memory.Data) != int(mem.StaticAllocEnd) {
		t.Errorf("expected %d bytes of simulated memory; got %d", mem.StaticAllocEnd, len(res.Memory.Data))
	}
}

func TestRunProfiles(t *testing.T) {
	specs := []struct {
		profile   string
		expStatus kernel.Status
		expHalted bool
	}{
		{"qemu.yaml", kernel.StatusWarning, false},
		{"bad-magic.yaml", kernel.StatusPanic, true},
	}

	for specIndex, spec := range specs {
		p, err := LoadProfile(filepath.Join("testdata", spec.profile))
		if err != nil {
			t.Fatal(err)
		}

		res, err := Run(context.Background(), p, discardLogger())
		if err != nil {
			t.Fatal(err)
		}

		outcomes := res.System.Manager.Outcomes()
		if got := outcomes[len(outcomes)-1].Status; got != spec.expStatus {
			t.Errorf("[spec %d] expected handoff check status %s; got %s", specIndex, spec.expStatus, got)
		}

		if got := res.Halted(); got != spec.expHalted {
			t.Errorf("[spec %d] expected halted to be %t; got %t", specIndex, spec.expHalted, got)
		}

		if spec.expHalted && res.BootErr == nil {
			t.Errorf("[spec %d] expected a boot error", specIndex)
		}

		res.Close()
	}
}

func TestRunAppliesPalette(t *testing.T) {
	p := DefaultProfile()
	p.Palette = map[uint8]RGB{14: {R: 0xff, G: 0xff, B: 0, A: 0xff}}

	res, err := Run(context.Background(), p, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if got := res.System.Video.Palette()[14]; got != color.Color(color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
		t.Errorf("expected palette entry 14 to be yellow; got %v", got)
	}

	n := len(res.CPU.PortWrites)
	if n < 4 || res.CPU.PortWrites[n-4].Port != 0x3c8 || res.CPU.PortWrites[n-4].Value != 14 {
		t.Errorf("expected the DAC to be programmed; got %v", res.CPU.PortWrites)
	}
}

func TestNewMemory(t *testing.T) {
	m, err := NewMemory(5000)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Data) != 2*pageSize {
		t.Errorf("expected size to be rounded up to %d; got %d", 2*pageSize, len(m.Data))
	}

	m.Data[len(m.Data)-1] = 0xaa

	if err = m.Close(); err != nil {
		t.Fatal(err)
	}

	if err = m.Close(); err != nil {
		t.Errorf("expected a second Close to be a no-op; got %v", err)
	}
}
