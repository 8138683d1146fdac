package sim

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/kfmt"
	"titanium/kernel/kmain"
	"titanium/kernel/mem"
)

// Result holds the state of the simulated machine after the boot sequence
// finished.
type Result struct {
	// System is the (possibly partially) booted system.
	System *kmain.System

	// CPU holds the trace of privileged operations.
	CPU *cpu.Recorder

	Memory *Memory

	// BootErr is the error returned by the boot sequence.
	BootErr *kernel.Error
}

// Halted returns true if a resource halted the CPU.
func (r *Result) Halted() bool {
	return r.CPU.Halted()
}

// Close detaches the console from kfmt and releases the simulated memory.
func (r *Result) Close() error {
	kfmt.SetOutputSink(nil)
	return r.Memory.Close()
}

// Run boots the kernel on a machine described by p. The returned Result
// must be closed by the caller.
//
// Run is not safe for concurrent use. Booting attaches the console as the
// process-wide kfmt output sink and Result.Close detaches it, so at most one
// Result may be open at a time.
func Run(ctx context.Context, p *Profile, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	memory, err := NewMemory(mem.Size(mem.StaticAllocEnd))
	if err != nil {
		return nil, err
	}

	if err := WriteHandoff(&memory.Buffer, p); err != nil {
		memory.Close()
		return nil, fmt.Errorf("writing boot loader handoff: %w", err)
	}

	rec := &cpu.Recorder{}
	rec.OnHalt = func() {
		logger.Warn("cpu halted", "port_writes", len(rec.PortWrites))
	}

	res := &Result{CPU: rec, Memory: memory}
	machine := kmain.Machine{
		Space:       &memory.Buffer,
		CPU:         rec,
		Magic:       uint32(*p.Magic),
		InfoAddr:    uintptr(p.InfoAddr),
		Diagnostics: p.Diagnostics,
	}

	logger.Info("booting", "profile", p.Name, "magic", fmt.Sprintf("0x%08x", machine.Magic), "info_addr", fmt.Sprintf("0x%x", machine.InfoAddr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		res.System, res.BootErr = kmain.Boot(machine)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// The boot goroutine still references the memory.
		go func() {
			<-done
			res.Close()
		}()
		return nil, ctx.Err()
	}

	if res.System.Video != nil {
		for index, c := range p.Palette {
			res.System.Video.SetPaletteColor(index, color.RGBA(c))
		}
	}

	if res.System.Manager != nil {
		for _, o := range res.System.Manager.Outcomes() {
			logger.Debug("resource registered", "name", o.Name, "status", o.Status.String())
		}
	}

	if res.BootErr != nil {
		logger.Error("boot failed", "module", res.BootErr.Module, "error", res.BootErr.Message)
	} else {
		logger.Info("boot complete", "gdt_loads", len(rec.GDTLoads), "port_writes", len(rec.PortWrites))
	}

	return res, nil
}
