package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/schollz/progressbar/v3"

	"titanium/internal/sim"
	"titanium/kernel/hal/multiboot"
)

// writeReport prints the resource outcomes, the privileged operation trace
// and the memory usage of a finished boot.
func writeReport(w io.Writer, res *sim.Result, trace bool) error {
	sys := res.System

	fmt.Fprintf(w, "\nResources:\n")
	if sys.Manager != nil {
		for _, o := range sys.Manager.Outcomes() {
			fmt.Fprintf(w, "  %-24s %s\n", o.Name, o.Status)
		}
	}

	if res.BootErr != nil {
		fmt.Fprintf(w, "\nBoot error: [%s] %s\n", res.BootErr.Module, res.BootErr.Message)
	}

	cpu := res.CPU
	fmt.Fprintf(w, "\nCPU:\n")
	fmt.Fprintf(w, "  GDT loads:        %d\n", len(cpu.GDTLoads))
	fmt.Fprintf(w, "  segment reloads:  %d\n", len(cpu.SegmentReloads))
	fmt.Fprintf(w, "  port writes:      %d\n", len(cpu.PortWrites))
	fmt.Fprintf(w, "  halted:           %t\n", cpu.Halted())

	if trace {
		for _, addr := range cpu.GDTLoads {
			fmt.Fprintf(w, "  lgdt   [0x%08x]\n", addr)
		}
		for _, r := range cpu.SegmentReloads {
			fmt.Fprintf(w, "  reload cs=0x%02x ds=0x%02x\n", r.Code, r.Data)
		}
		for _, pw := range cpu.PortWrites {
			fmt.Fprintf(w, "  outb   0x%03x <- 0x%02x\n", pw.Port, pw.Value)
		}
	}

	if sys.Checker != nil {
		if info := sys.Checker.Info(); info != nil {
			writeBootInfo(w, info)
			writeMemoryMap(w, info)
		}
	}

	if sys.Allocator != nil {
		arena := sys.Allocator.Arena()
		base, end := arena.Region()
		allocs, frees := sys.Allocator.Counters()

		fmt.Fprintf(w, "\nStatic arena 0x%08x-0x%08x (%d allocations, %d frees):\n", base, end, allocs, frees)

		bar := progressbar.NewOptions64(
			int64(end-base),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("  used"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
		)
		if err := bar.Set64(int64(arena.Used())); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	return nil
}

func writeBootInfo(w io.Writer, info *multiboot.Info) {
	fmt.Fprintf(w, "\nBoot loader:\n")
	if info.Has(multiboot.FlagBootDevice) {
		fmt.Fprintf(w, "  boot drive:       0x%02x\n", info.BootDrive())
	}

	args := info.CmdLineArgs()
	if len(args) == 0 {
		return
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fmt.Fprintf(w, "  command line:\n")
	for _, k := range keys {
		fmt.Fprintf(w, "    %-16s %s\n", k, args[k])
	}
}

func writeMemoryMap(w io.Writer, info *multiboot.Info) {
	fmt.Fprintf(w, "\nMemory map (%d kB reported):\n", info.MemorySize())

	err := info.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) bool {
		fmt.Fprintf(w, "  [0x%010x - 0x%010x] %-20s\n",
			entry.PhysAddress, entry.PhysAddress+entry.Length-1, entry.Type)
		return true
	})

	if err != nil {
		fmt.Fprintf(w, "  unavailable: %s\n", err.Message)
	}
}
